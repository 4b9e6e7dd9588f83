package bot

import "strings"

const helpTemplate = `
**Server Management Commands:**
` + "`" + `{p}build_server <description>` + "`" + ` - Design and build a server based on your description
` + "`" + `{p}confirm` + "`" + ` - Confirm and execute the pending server build plan
` + "`" + `{p}cancel` + "`" + ` - Cancel the pending server build plan
` + "`" + `{p}add <channels|roles|content> <description>` + "`" + ` - Add to the server after it is built
` + "`" + `{p}ask <question>` + "`" + ` - Ask the AI a question
` + "`" + `{p}help_server` + "`" + ` - Show this help message

**Examples:**
1. Gaming Server:
` + "`" + `{p}build_server Create a gaming community server focused on Minecraft and other games, with separate areas for different games, voice channels for gaming sessions, role-based access, and community features` + "`" + `

2. Community Server:
` + "`" + `{p}build_server Create a vibrant community server with announcement channels, general chat, topic-specific discussions, voice hangouts, and special roles for moderators and active members` + "`" + `

3. Education Server:
` + "`" + `{p}build_server Create an educational server for a programming course with areas for announcements, general discussion, separate topics for different programming languages, homework help, and project collaboration` + "`" + `

The bot will create a complete server structure with:
- Server settings
- Categories with emojis
- Text, voice, and forum channels
- Roles with permissions
- Channel-specific permissions

⚠️ **Note**: Using {p}confirm will delete all existing channels and roles before creating the new structure!`

func helpText(prefix string) string {
	return strings.TrimSpace(strings.ReplaceAll(helpTemplate, "{p}", prefix))
}
