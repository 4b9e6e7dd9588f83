// Package bot is the chat command surface: it parses prefixed commands,
// gates them, and runs the matching builder flow.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"sync"
	"unicode"

	"ai_server_builder/builder"
	"ai_server_builder/dialog"
	"ai_server_builder/generator"
	"ai_server_builder/perm"
	"ai_server_builder/platform"
)

const DefaultPrefix = "!"

// Planner generates plans and answers free questions.
// *generator.Agent implements it.
type Planner interface {
	GeneratePlan(ctx context.Context, description string) (generator.Plan, error)
	Ask(ctx context.Context, question string) (string, error)
}

// GuildSource hands out guild handles. *platform.Gateway implements it.
type GuildSource interface {
	Guild(guildID string) platform.Guild
}

type Router struct {
	prefix   string
	planner  Planner
	store    *builder.PlanStore
	builder  *builder.Builder
	dialogs  *dialog.Dispatcher
	guilds   GuildSource
	logger   *slog.Logger
	commands map[string]command

	ctx    context.Context
	cancel context.CancelFunc

	mu   sync.Mutex
	busy map[string]bool
}

// request is one invocation of a command.
type request struct {
	msg  platform.Message
	args string
	conv *builder.Conversation
}

type command struct {
	admin bool
	// exclusive commands run at most once at a time per guild
	exclusive bool
	run       func(ctx context.Context, req *request) error
}

func NewRouter(prefix string, planner Planner, store *builder.PlanStore, b *builder.Builder,
	dialogs *dialog.Dispatcher, guilds GuildSource, logger *slog.Logger) *Router {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	r := &Router{
		prefix:  prefix,
		planner: planner,
		store:   store,
		builder: b,
		dialogs: dialogs,
		guilds:  guilds,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
		busy:    make(map[string]bool),
	}
	r.commands = map[string]command{
		"build_server": {admin: true, exclusive: true, run: r.buildServer},
		"confirm":      {admin: true, exclusive: true, run: r.confirm},
		"cancel":       {admin: true, run: r.cancelPlan},
		"add":          {admin: true, exclusive: true, run: r.add},
		"ask":          {run: r.ask},
		"help_server":  {run: r.help},
	}
	return r
}

// Close ends every running flow; pending questions resolve as timeouts.
func (r *Router) Close() {
	r.cancel()
}

// Handle processes one incoming message. It blocks for the length of the
// flow the message starts.
func (r *Router) Handle(msg platform.Message) {
	if msg.Bot {
		return
	}
	if r.dialogs.Dispatch(dialog.Message{ChannelID: msg.ChannelID, AuthorID: msg.AuthorID, Content: msg.Content}) {
		return
	}
	name, args, ok := r.parse(msg.Content)
	if !ok {
		return
	}
	cmd, ok := r.commands[name]
	if !ok {
		r.logger.Debug("unknown command", "guild", msg.GuildID, "command", name)
		return
	}

	ctx := r.ctx
	g := r.guilds.Guild(msg.GuildID)
	req := &request{
		msg:  msg,
		args: args,
		conv: r.builder.Conversation(g, msg.ChannelID, msg.AuthorID, r.dialogs),
	}
	log := r.logger.With("guild", msg.GuildID, "channel", msg.ChannelID, "command", name)
	log.Info("command received", "author", msg.AuthorID)

	if cmd.admin {
		allowed, err := r.isAdmin(ctx, g, msg)
		if err != nil {
			log.Error("permission check failed", "error", err)
			req.conv.Sayf(ctx, "❌ Could not check your permissions: %v", err)
			return
		}
		if !allowed {
			req.conv.Say(ctx, "❌ You need administrator permission to use this command.")
			return
		}
	}
	if cmd.exclusive {
		if !r.acquire(msg.GuildID) {
			req.conv.Say(ctx, "⚠️ Another server build is already running in this server. Please wait for it to finish.")
			return
		}
		defer r.release(msg.GuildID)
	}

	if err := r.run(ctx, cmd, req); err != nil {
		log.Error("command failed", "error", err)
		req.conv.Sayf(ctx, "❌ An unexpected error occurred: %v", err)
		reply := req.conv.YesNo(ctx, "Would you like to try continuing? (yes/no)")
		switch {
		case reply.Outcome == dialog.TimedOut:
			req.conv.Say(ctx, "No response received, stopping setup.")
		case reply.Yes():
			req.conv.Sayf(ctx, "👍 Continuing. Run `%shelp_server` if you need the list of commands.", r.prefix)
		default:
			req.conv.Say(ctx, "🛑 Stopped.")
		}
	}
}

// run calls the command and turns a panic into an error.
func (r *Router) run(ctx context.Context, cmd command, req *request) (err error) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("command panicked", "panic", p, "stack", string(debug.Stack()))
			err = fmt.Errorf("%v", p)
		}
	}()
	return cmd.run(ctx, req)
}

func (r *Router) parse(content string) (name, args string, ok bool) {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, r.prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(content, r.prefix)
	name = rest
	if i := strings.IndexFunc(rest, unicode.IsSpace); i >= 0 {
		name, args = rest[:i], rest[i:]
	}
	if name == "" {
		return "", "", false
	}
	return strings.ToLower(name), strings.TrimSpace(args), true
}

func (r *Router) isAdmin(ctx context.Context, g platform.Guild, msg platform.Message) (bool, error) {
	p, err := g.MemberPermissions(ctx, msg.AuthorID, msg.ChannelID)
	if err != nil {
		return false, err
	}
	return p.Has(perm.Administrator), nil
}

func (r *Router) acquire(guildID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy[guildID] {
		return false
	}
	r.busy[guildID] = true
	return true
}

func (r *Router) release(guildID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.busy, guildID)
}

// scaffold makes sure the bot role and channel exist. It returns false when
// setup failed or the requester was sent to the bot channel.
func (r *Router) scaffold(ctx context.Context, req *request) bool {
	if _, err := r.builder.Scaffold.EnsureRole(ctx, req.conv); err != nil {
		r.logger.Warn("scaffold role unavailable", "guild", req.msg.GuildID, "error", err)
		return false
	}
	ch, err := r.builder.Scaffold.EnsureChannel(ctx, req.conv)
	if err != nil {
		r.logger.Warn("scaffold channel unavailable", "guild", req.msg.GuildID, "error", err)
		return false
	}
	if req.msg.ChannelID != ch.ID {
		req.conv.Sayf(ctx, "📢 Please use <#%s> for bot commands!", ch.ID)
		return false
	}
	return true
}

func (r *Router) buildServer(ctx context.Context, req *request) error {
	if req.args == "" {
		req.conv.Sayf(ctx, "❌ Please describe your server, for example `%sbuild_server a cozy book club`.", r.prefix)
		return nil
	}
	if !r.scaffold(ctx, req) {
		return nil
	}

	req.conv.Say(ctx, "🤔 Analyzing your server requirements...")
	plan, err := r.planner.GeneratePlan(ctx, req.args)
	if err != nil {
		var (
			decodeErr *generator.DecodeError
			validErr  *generator.ValidationError
			genErr    *generator.GenerationError
		)
		switch {
		case errors.As(err, &decodeErr):
			req.conv.Say(ctx, "❌ Error parsing server structure: Invalid JSON format. Please try again.")
		case errors.As(err, &validErr):
			req.conv.Sayf(ctx, "❌ Invalid server structure: %s. Please try again.", validErr.Reason)
		case errors.As(err, &genErr):
			req.conv.Sayf(ctx, "❌ Could not generate a server structure: %v. Please try again.", genErr.Err)
		default:
			return err
		}
		r.logger.Warn("plan rejected", "guild", req.msg.GuildID, "error", err)
		return nil
	}

	staged := r.store.Stage(req.msg.GuildID, req.msg.AuthorID, plan)
	r.logger.Info("plan staged", "guild", req.msg.GuildID, "plan", staged.ID,
		"categories", len(plan.Categories), "roles", len(plan.Roles), "channels", plan.ChannelCount())
	req.conv.Say(ctx, builder.Summary(plan, r.prefix))
	return nil
}

func (r *Router) confirm(ctx context.Context, req *request) error {
	if !r.scaffold(ctx, req) {
		return nil
	}
	staged, err := r.store.Consume(req.msg.GuildID)
	if errors.Is(err, builder.ErrNoPendingPlan) {
		req.conv.Sayf(ctx, "No pending server build plan found. Use %sbuild_server first!", r.prefix)
		return nil
	}
	if err != nil {
		return err
	}
	ok := r.builder.Confirm(ctx, req.conv, staged.Plan)
	r.logger.Info("plan confirmed", "guild", req.msg.GuildID, "plan", staged.ID, "applied", ok)
	return nil
}

func (r *Router) cancelPlan(ctx context.Context, req *request) error {
	if err := r.store.Cancel(req.msg.GuildID); err != nil {
		if errors.Is(err, builder.ErrNoPendingPlan) {
			req.conv.Say(ctx, "No pending server build to cancel!")
			return nil
		}
		return err
	}
	req.conv.Say(ctx, "❌ Server build cancelled!")
	return nil
}

func (r *Router) add(ctx context.Context, req *request) error {
	kind, description, _ := strings.Cut(req.args, " ")
	kind = strings.ToLower(kind)
	description = strings.TrimSpace(description)
	switch kind {
	case "channels", "roles", "content":
	default:
		req.conv.Say(ctx, "Invalid content type. Use: channels, roles, or content")
		return nil
	}
	if description == "" {
		req.conv.Sayf(ctx, "❌ Please add a description, for example `%sadd %s ...`.", r.prefix, kind)
		return nil
	}

	req.conv.Sayf(ctx, "🔨 Processing your request to add %s...", kind)
	a := r.builder.Amender
	switch kind {
	case "channels":
		a.AddChannels(ctx, req.conv, description)
	case "roles":
		a.AddRoles(ctx, req.conv, description)
	case "content":
		if ch, ok := a.SelectChannel(ctx, req.conv, false); ok {
			a.AddContent(ctx, req.conv, ch, description)
		}
	}
	return nil
}

func (r *Router) ask(ctx context.Context, req *request) error {
	if req.args == "" {
		req.conv.Sayf(ctx, "❌ Please ask a question, for example `%sask how do I set up roles?`.", r.prefix)
		return nil
	}
	answer, err := r.planner.Ask(ctx, req.args)
	if err != nil {
		req.conv.Sayf(ctx, "Sorry, I encountered an error: %v", err)
		return nil
	}
	req.conv.Say(ctx, answer)
	return nil
}

func (r *Router) help(ctx context.Context, req *request) error {
	req.conv.Say(ctx, helpText(r.prefix))
	return nil
}
