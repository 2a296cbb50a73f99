package slack

import (
	"fmt"
	"strings"

	"github.com/slack-go/slack"

	"github.com/fyrsmithlabs/ctrld/internal/command"
)

const helpText = `⛑️ Here's a simple help guide for all the commands available.

- /ctrl help: Show this help guide.
- /ctrl list: List all projects.
- /ctrl project [project_name]: Show information about a project (defaults to this channel's project).
- /ctrl create <project_name>: Create a new project, automatically assigning it to this channel.
- /ctrl delete <project_name>: Delete a project.
- /ctrl add <project_name> <@user>: Add a user as a manager to a project.
- /ctrl remove <project_name> <@user>: Remove a user as a manager from a project.
- /ctrl github <project_name> <repo_name>: Set the GitHub repository for a project.
- /ctrl me github <github_username>: Set your GitHub username.`

// Message is a rendered outcome: fallback text plus optional Block Kit
// blocks.
type Message struct {
	Text   string
	Blocks []slack.Block
}

// Render turns a command outcome into the message posted back to the
// invoking channel.
func Render(o command.Outcome) Message {
	switch o.Kind {
	case command.OutcomeHelp:
		return Message{Text: helpText}

	case command.OutcomeListing:
		return renderListing(o.Listing)

	case command.OutcomeDetail:
		return renderDetail(o.Detail)

	case command.OutcomeCreated:
		return Message{Text: fmt.Sprintf("Project `%s` created.", o.Project)}

	case command.OutcomeDeleted:
		return Message{Text: fmt.Sprintf("Project `%s` deleted.", o.Project)}

	case command.OutcomeOwnerAdded:
		return Message{Text: fmt.Sprintf("User <@%s> added as a manager of `%s`.", o.Target, o.Project)}

	case command.OutcomeOwnerRemoved:
		return Message{Text: fmt.Sprintf("User <@%s> removed as a manager of `%s`.", o.Target, o.Project)}

	case command.OutcomeRepositorySet:
		return Message{Text: fmt.Sprintf("GitHub repository `%s` set for `%s`.", o.Repository, o.Project)}

	case command.OutcomeIdentityLinked:
		return Message{Text: fmt.Sprintf("GitHub username set to `%s`.", o.Username)}

	case command.OutcomeNotFound:
		if o.Project != "" {
			return Message{Text: fmt.Sprintf("Project `%s` does not exist.", o.Project)}
		}
		return Message{Text: "Project not found. Use `/ctrl list` for a list of projects."}

	case command.OutcomeAlreadyExists:
		return Message{Text: fmt.Sprintf("Project `%s` already exists.", o.Project)}

	case command.OutcomeNotLinked:
		return Message{Text: "This user must link their GitHub account first. Use `/ctrl me github <github_username>`."}

	case command.OutcomeAlreadyOwner:
		return Message{Text: fmt.Sprintf("User <@%s> is already a manager of `%s`.", o.Target, o.Project)}

	case command.OutcomeNotOwner:
		return Message{Text: fmt.Sprintf("User <@%s> is not a manager of `%s`.", o.Target, o.Project)}

	case command.OutcomeStoreFailure:
		return Message{Text: "Something went wrong persisting the registry. The change was not saved; please try again."}

	default:
		return Message{Text: "Invalid command. Use `/ctrl help` for a list of commands."}
	}
}

func renderListing(l *command.Listing) Message {
	header := fmt.Sprintf(
		"Global project managers: %s.\nHere's a list of all projects.",
		strings.Join(l.Managers, ", "),
	)

	blocks := []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, header, false, false),
			nil, nil,
		),
	}

	for _, p := range l.Projects {
		text := fmt.Sprintf("%s in <#%s>", p.Name, p.Channel)
		if len(p.Owners) > 0 {
			text += fmt.Sprintf(".\nProject owners: %s", strings.Join(p.Owners, ", "))
		}

		var accessory *slack.Accessory
		if p.Repository != "" {
			button := slack.NewButtonBlockElement(
				"github", "github",
				slack.NewTextBlockObject(slack.PlainTextType, "GitHub", false, false),
			)
			button.URL = "https://github.com/" + p.Repository
			accessory = slack.NewAccessory(button)
		}

		blocks = append(blocks, slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, text, false, false),
			nil, accessory,
		))
	}

	return Message{Text: header, Blocks: blocks}
}

func renderDetail(d *command.ProjectDetail) Message {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*Project*: `%s`\n", d.Name)
	fmt.Fprintf(&sb, "*Channel*: <#%s>\n", d.Channel)
	if d.Repository != "" {
		fmt.Fprintf(&sb, "*GitHub*: <https://github.com/%s|%s>\n", d.Repository, d.Repository)
	}
	if d.Tracker != "" {
		fmt.Fprintf(&sb, "*Jira*: `%s`\n", d.Tracker)
	}

	sb.WriteString("*Managers*:\n")
	for _, owner := range d.Owners {
		// Owners whose username no longer resolves to a Slack profile are
		// listed by username alone.
		if owner.SlackID != "" {
			fmt.Fprintf(&sb, "<@%s> (%s)\n", owner.SlackID, owner.Username)
		} else {
			fmt.Fprintf(&sb, "%s\n", owner.Username)
		}
	}

	return Message{Text: sb.String()}
}
