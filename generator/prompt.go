package generator

import (
	"fmt"
	"strings"
)

// Prompt is the message pair sent to the LLM.
type Prompt struct {
	System string
	User   string
}

const planExample = `{"server_config": {"name": "Gaming Hub","verification_level": 1},"categories": [],"roles": []}`

const planSchema = `{
    "server_config": {
        "name": "string",
        "verification_level": "number (0-4)",
        "explicit_content_filter": "number (0-2)",
        "afk_timeout": "number (60, 300, 900, 1800, 3600)"
    },
    "categories": [
        {
            "name": "string (with emoji)",
            "position": "number",
            "permissions": {
                "role_name": {
                    "view_channel": "boolean",
                    "send_messages": "boolean"
                }
            },
            "channels": [
                {
                    "name": "string (with emoji)",
                    "type": "text/voice/forum",
                    "topic": "string",
                    "position": "number",
                    "slowmode_delay": "number",
                    "nsfw": "boolean",
                    "permissions": {}
                }
            ]
        }
    ],
    "roles": [
        {
            "name": "string (with emoji)",
            "color": "string (hex color)",
            "hoist": "boolean",
            "mentionable": "boolean",
            "permissions": {
                "administrator": "boolean",
                "manage_channels": "boolean",
                "manage_roles": "boolean",
                "manage_messages": "boolean",
                "view_channel": "boolean",
                "send_messages": "boolean",
                "read_message_history": "boolean",
                "connect": "boolean",
                "speak": "boolean",
                "use_external_emojis": "boolean",
                "add_reactions": "boolean",
                "attach_files": "boolean",
                "embed_links": "boolean"
            }
        }
    ]
}`

var planRules = []string{
	"ONLY return the JSON object, nothing else",
	"Use emojis in names (📢, 💬, 🎮, 👑, etc.)",
	"Channel names must be lowercase with hyphens",
	fmt.Sprintf("Maximum: %d categories, %d channels per category, %d roles", MaxCategories, MaxChannelsPerCategory, MaxRoles),
	"All JSON must be valid with proper quotes and commas",
	`All hex colors must be valid (e.g., "#FF0000")`,
	"All boolean values must be true or false, not strings",
	"All number values must be actual numbers, not strings",
	"Position values must start from 0 and be sequential",
	"Do not add any fields not specified in the schema",
}

// BuildPlanPrompt embeds the description, the schema, one example and the formatting rules.
func BuildPlanPrompt(description string) Prompt {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are a Discord server structure generator. Based on this description: %q, create a Discord server structure.\n\n", description))
	sb.WriteString("IMPORTANT: You must ONLY return a valid JSON object. Do not include ANY explanatory text, markdown formatting, or code blocks.\n\n")
	sb.WriteString("Example of CORRECT response format:\n")
	sb.WriteString(planExample)
	sb.WriteString("\n\nThe JSON structure must follow this schema:\n")
	sb.WriteString(planSchema)
	sb.WriteString("\n\nRules:\n")
	for i, rule := range planRules {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, rule))
	}
	return Prompt{User: strings.TrimRight(sb.String(), "\n")}
}

// BuildChannelsPrompt asks for a flat channel list used by the "add channels" amendment.
func BuildChannelsPrompt(description string) Prompt {
	user := fmt.Sprintf(`Generate a Discord channel structure based on this description: %s
Return ONLY a JSON object with an array of channels. Each channel should have:
- name: channel name (use emojis where appropriate)
- type: 'text', 'voice', or 'forum'
- topic: channel topic/description
- category: which category it belongs to
Example format:
{"channels": [{"name": "🎮-gaming", "type": "text", "topic": "General gaming discussion", "category": "Gaming"}]}`, description)
	return Prompt{User: user}
}

// BuildRolesPrompt asks for a flat role list used by the "add roles" amendment.
func BuildRolesPrompt(description string) Prompt {
	user := fmt.Sprintf(`Generate Discord roles based on this description: %s
Return ONLY a JSON object with an array of roles. Each role should have:
- name: role name
- color: hex color code
- hoist: boolean (should role be displayed separately)
- mentionable: boolean
- permissions: object of permission names and boolean values
Example format:
{"roles": [{"name": "Admin", "color": "#FF0000", "hoist": true, "mentionable": true, "permissions": {"administrator": true}}]}`, description)
	return Prompt{User: user}
}

var purposeGuides = map[Purpose]string{
	PurposeRules: `This is a rules channel. Include:
- Server rules with explanations
- Consequences for breaking rules
- How to report violations`,
	PurposeWelcome: `This is an info/welcome channel. Include:
- Warm welcome message
- Server description
- How to get roles
- Channel navigation guide`,
	PurposeAnnouncement: `This is an announcement channel. Include:
- Announcement template
- Types of announcements to expect`,
	PurposeGeneric: `Write an engaging pinned introduction that fits the channel name.`,
}

// BuildContentPrompt asks for ready-to-post channel prose tailored to the channel's purpose.
func BuildContentPrompt(channelName, description string) Prompt {
	purpose := InferPurpose(channelName)
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generate formatted Discord channel content for a channel named '%s' based on this description: %s\n\n", channelName, description))
	sb.WriteString(purposeGuides[purpose])
	sb.WriteString(`

Use Discord markdown formatting:
- **bold** for headers
- *italic* for emphasis
- > for quotes
- • for bullet points
- Emojis where appropriate

Return only the message text. Make it engaging and community-friendly!`)
	return Prompt{User: sb.String()}
}

// Purpose is the role a channel plays, guessed from its name.
type Purpose string

const (
	PurposeRules        Purpose = "rules"
	PurposeWelcome      Purpose = "welcome"
	PurposeAnnouncement Purpose = "announcement"
	PurposeGeneric      Purpose = "generic"
)

func InferPurpose(channelName string) Purpose {
	name := strings.ToLower(channelName)
	switch {
	case strings.Contains(name, "rule"):
		return PurposeRules
	case strings.Contains(name, "welcome"), strings.Contains(name, "info"):
		return PurposeWelcome
	case strings.Contains(name, "announce"), strings.Contains(name, "news"):
		return PurposeAnnouncement
	}
	return PurposeGeneric
}
