package builder

import (
	"fmt"
	"strings"

	"ai_server_builder/generator"
)

// Summary renders a staged plan for review in chat.
func Summary(plan generator.Plan, prefix string) string {
	var sb strings.Builder
	sb.WriteString("Here's the planned server structure:\n\n")
	if plan.ServerConfig != nil {
		sb.WriteString("**Server Configuration**\n")
		fmt.Fprintf(&sb, "Name: %s\n\n", plan.ServerConfig.Name)
	}

	sb.WriteString("**Categories and Channels**\n")
	for _, cat := range plan.Categories {
		fmt.Fprintf(&sb, "📁 %s\n", cat.Name)
		for _, ch := range cat.Channels {
			fmt.Fprintf(&sb, "  %s %s\n", channelIcon(ch.Type), ch.Name)
		}
	}

	sb.WriteString("\n**Roles**\n")
	for _, r := range plan.Roles {
		fmt.Fprintf(&sb, "👥 %s\n", r.Name)
	}

	fmt.Fprintf(&sb, "\nReview this structure and type `%sconfirm` to proceed with creation, or `%scancel` to start over.", prefix, prefix)
	return sb.String()
}

func channelIcon(kind string) string {
	switch kind {
	case generator.ChannelText:
		return "💬"
	case generator.ChannelVoice:
		return "🔊"
	}
	return "📋"
}
