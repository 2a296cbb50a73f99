package command

// OutcomeKind identifies the result of a dispatched command. The kind is
// what the message layer switches on, and it doubles as the metric label.
type OutcomeKind string

// Success kinds.
const (
	OutcomeHelp           OutcomeKind = "help"
	OutcomeListing        OutcomeKind = "listing"
	OutcomeDetail         OutcomeKind = "detail"
	OutcomeCreated        OutcomeKind = "created"
	OutcomeDeleted        OutcomeKind = "deleted"
	OutcomeOwnerAdded     OutcomeKind = "owner_added"
	OutcomeOwnerRemoved   OutcomeKind = "owner_removed"
	OutcomeRepositorySet  OutcomeKind = "repository_set"
	OutcomeIdentityLinked OutcomeKind = "identity_linked"
)

// Failure kinds.
const (
	OutcomeInvalid       OutcomeKind = "invalid"
	OutcomeNotFound      OutcomeKind = "not_found"
	OutcomeAlreadyExists OutcomeKind = "already_exists"
	OutcomeNotLinked     OutcomeKind = "not_linked"
	OutcomeAlreadyOwner  OutcomeKind = "already_owner"
	OutcomeNotOwner      OutcomeKind = "not_owner"
	OutcomeStoreFailure  OutcomeKind = "store_failure"
)

// Outcome is the typed result handed to the message layer. Only the fields
// relevant to the kind are set.
type Outcome struct {
	Kind OutcomeKind

	// Project is the project name the command acted on, where applicable.
	Project string

	// Username is the GitHub username involved (owner added/removed,
	// identity linked).
	Username string

	// Target is the Slack ID of the mentioned user, where applicable.
	Target string

	// Repository is the reference set by a github command.
	Repository string

	// Detail is set for OutcomeDetail.
	Detail *ProjectDetail

	// Listing is set for OutcomeListing.
	Listing *Listing
}

// OwnerRef pairs an owner's GitHub username with the Slack ID it resolves
// to. SlackID is empty when the reverse lookup finds no profile.
type OwnerRef struct {
	Username string
	SlackID  string
}

// ProjectDetail is the payload for a project detail outcome.
type ProjectDetail struct {
	Name       string
	Channel    string
	Repository string
	Tracker    string
	Owners     []OwnerRef
}

// ProjectSummary is one project entry in a listing.
type ProjectSummary struct {
	Name       string
	Channel    string
	Repository string
	Owners     []string
}

// Listing is the payload for a list outcome. Projects are sorted by name.
type Listing struct {
	Managers []string
	Projects []ProjectSummary
}
