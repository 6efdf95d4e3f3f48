package pipelinedef

// NotifyKind tags which NotifyValue variant is populated.
type NotifyKind int

const (
	NotifySlack NotifyKind = iota
	NotifyEmail
	NotifyWebhook
	NotifyPagerduty
	NotifyGithubCommitStatus
	NotifyGithubCheck
	NotifyBasecamp
)

// NotifyValue is a pipeline-level `notify` entry.
type NotifyValue struct {
	Kind NotifyKind

	// Identifying field: the Slack channel, email address, webhook URL,
	// PagerDuty service key, commit-status context, or Basecamp URL. The
	// GithubCheck variant carries the string given under github_check.
	Target string

	// If is the optional `if:` predicate gating whether this notification
	// fires, carried as raw text; the conditional validator checks it the
	// same way it checks a step's if_condition.
	If *IfCondition
}
