package command

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalid marks command text that does not parse: unknown verb, missing
// arguments, or a malformed mention. It never reaches the registry.
var ErrInvalid = errors.New("invalid command")

// mentionPattern matches Slack mention tokens: <@U123> or <@U123|name>.
var mentionPattern = regexp.MustCompile(`^<@([A-Z0-9]+)(?:\|[^>]*)?>$`)

// Command is one parsed command variant. The set is closed; the router
// dispatches with an exhaustive type switch.
type Command interface {
	// Verb returns the command's verb token, used for logging and metrics.
	Verb() string
}

// Help shows the command guide. No registry access.
type Help struct{}

// List shows all projects and the global managers.
type List struct{}

// Show shows one project's detail. An empty Project falls back to the
// project bound to the invoking channel.
type Show struct {
	Project string
}

// Create creates a project bound to the invoking channel.
type Create struct {
	Project string
}

// Delete removes a project.
type Delete struct {
	Project string
}

// AddOwner adds the mentioned user as a project owner.
type AddOwner struct {
	Project string
	Target  string // Slack user ID from the mention
}

// RemoveOwner removes the mentioned user from a project's owners.
type RemoveOwner struct {
	Project string
	Target  string
}

// SetRepository sets a project's GitHub repository reference.
type SetRepository struct {
	Project    string
	Repository string
}

// LinkIdentity links the invoking user's GitHub username.
type LinkIdentity struct {
	Username string
}

func (Help) Verb() string          { return "help" }
func (List) Verb() string          { return "list" }
func (Show) Verb() string          { return "project" }
func (Create) Verb() string        { return "create" }
func (Delete) Verb() string        { return "delete" }
func (AddOwner) Verb() string      { return "add" }
func (RemoveOwner) Verb() string   { return "remove" }
func (SetRepository) Verb() string { return "github" }
func (LinkIdentity) Verb() string  { return "me github" }

// Parse splits command text on whitespace and produces the matching
// command variant. Verb matching is case-sensitive and exact; surplus
// arguments are ignored.
func Parse(text string) (Command, error) {
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return nil, ErrInvalid
	}

	verb, args := tokens[0], tokens[1:]

	switch verb {
	case "help":
		return Help{}, nil

	case "list":
		return List{}, nil

	case "project":
		if len(args) == 0 {
			return Show{}, nil
		}
		return Show{Project: args[0]}, nil

	case "create":
		if len(args) < 1 {
			return nil, ErrInvalid
		}
		return Create{Project: args[0]}, nil

	case "delete":
		if len(args) < 1 {
			return nil, ErrInvalid
		}
		return Delete{Project: args[0]}, nil

	case "add":
		if len(args) < 2 {
			return nil, ErrInvalid
		}
		target, err := parseMention(args[1])
		if err != nil {
			return nil, err
		}
		return AddOwner{Project: args[0], Target: target}, nil

	case "remove":
		if len(args) < 2 {
			return nil, ErrInvalid
		}
		target, err := parseMention(args[1])
		if err != nil {
			return nil, err
		}
		return RemoveOwner{Project: args[0], Target: target}, nil

	case "github":
		if len(args) < 2 {
			return nil, ErrInvalid
		}
		return SetRepository{Project: args[0], Repository: args[1]}, nil

	case "me":
		if len(args) < 2 || args[0] != "github" {
			return nil, ErrInvalid
		}
		return LinkIdentity{Username: args[1]}, nil

	default:
		return nil, ErrInvalid
	}
}

// parseMention extracts the Slack user ID from a mention token.
func parseMention(token string) (string, error) {
	m := mentionPattern.FindStringSubmatch(token)
	if m == nil {
		return "", ErrInvalid
	}
	return m[1], nil
}
