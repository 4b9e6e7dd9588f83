package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"ai_server_builder/builder"
	"ai_server_builder/config"
	"ai_server_builder/dialog"
	"ai_server_builder/generator"
	"ai_server_builder/platform"
)

// autoAsker answers every question with the first acceptable of "yes" or "1".
type autoAsker struct{}

func (autoAsker) Ask(_ context.Context, p dialog.Prompt) dialog.Reply {
	if p.Announce != nil {
		p.Announce()
	}
	for _, answer := range []string{"yes", "1"} {
		if p.Accept == nil || p.Accept(answer) {
			return dialog.Reply{Outcome: dialog.Answered, Content: answer}
		}
	}
	return dialog.Reply{Outcome: dialog.TimedOut}
}

// simulateApply runs the provisioner against an in-memory guild, echoing
// bot messages and the resulting call log to out.
func simulateApply(ctx context.Context, out io.Writer, gen builder.Generator, plan generator.Plan, cfg *config.Config, log *slog.Logger) error {
	g := platform.NewMemoryGuild("simulated", "server-builder")
	g.OnSend = func(_, content string) {
		for _, line := range strings.Split(content, "\n") {
			fmt.Fprintf(out, "bot> %s\n", line)
		}
	}

	b := builder.New(gen, builder.Options{
		RoleName:    cfg.Builder.RoleName,
		ChannelName: cfg.Builder.ChannelName,
	}, log)
	setup := b.Conversation(g, "setup", "operator", autoAsker{})
	if _, err := b.Scaffold.EnsureRole(ctx, setup); err != nil {
		return err
	}
	ch, err := b.Scaffold.EnsureChannel(ctx, setup)
	if err != nil {
		return err
	}

	conv := b.Conversation(g, ch.ID, "operator", autoAsker{})
	ok := b.Provisioner.Apply(ctx, conv, plan)

	fmt.Fprintln(out, "\nCalls:")
	for i, call := range g.Calls() {
		fmt.Fprintf(out, "%3d %s\n", i+1, call)
	}
	if !ok {
		return fmt.Errorf("simulated apply stopped early")
	}
	return nil
}
