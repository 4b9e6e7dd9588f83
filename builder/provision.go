package builder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"ai_server_builder/generator"
	"ai_server_builder/perm"
	"ai_server_builder/platform"
)

const everyoneName = "@everyone"

// Provisioner applies a plan to a guild: clean, roles, categories and
// channels, then guild settings. Calls are issued one at a time.
type Provisioner struct {
	scaffold *Scaffold
	pacer    *Pacer
	logger   *slog.Logger
}

func NewProvisioner(scaffold *Scaffold, pacer *Pacer, logger *slog.Logger) *Provisioner {
	return &Provisioner{scaffold: scaffold, pacer: pacer, logger: logger}
}

// Apply returns false when the requester stopped the run or a step could
// not be recovered. Nothing is issued after the point where it stops.
func (p *Provisioner) Apply(ctx context.Context, conv *Conversation, plan generator.Plan) bool {
	log := p.logger.With("guild", conv.Guild.ID())
	conv.Say(ctx, "🚀 Starting server configuration...")

	conv.Say(ctx, "🧹 Cleaning up existing server structure...")
	if failed, err := p.clean(ctx, conv); err != nil || failed > 0 {
		if err != nil {
			conv.Sayf(ctx, "⚠️ Error during cleanup: %v", err)
		} else {
			conv.Sayf(ctx, "⚠️ Error during cleanup: %d item(s) could not be removed", failed)
		}
		log.Warn("cleanup incomplete", "stage", "clean", "failed", failed, "error", err)
		if !conv.Proceed(ctx, "Would you like to continue anyway? (yes/no)") {
			return false
		}
	} else {
		conv.Say(ctx, "✅ Cleanup completed")
	}

	conv.Say(ctx, "👥 Creating roles...")
	// the everyone role shares the guild's ID
	roleIDs := map[string]string{everyoneName: conv.Guild.ID()}
	for _, r := range plan.Roles {
		if len(r.Permissions.Unknown) > 0 {
			conv.Sayf(ctx, "⚠️ Ignoring unknown permissions for role %s: %s", r.Name, strings.Join(r.Permissions.Unknown, ", "))
		}
		created, err := p.createRole(ctx, conv.Guild, r.Name, r.Color, r.Hoist, r.Mentionable, r.Permissions.Allow)
		if err != nil {
			log.Warn("role create failed", "stage", "roles", "item", r.Name, "error", err)
			conv.Sayf(ctx, "⚠️ Error creating role %s: %v", r.Name, err)
			if !conv.Proceed(ctx, "Would you like to continue with the next role? (yes/no)") {
				return false
			}
			continue
		}
		roleIDs[r.Name] = created.ID
		conv.Sayf(ctx, "✅ Created role: %s", created.Name)
	}

	conv.Say(ctx, "📁 Creating categories and channels...")
	for _, cat := range plan.Categories {
		catSets := resolveOverwrites(cat.Permissions, roleIDs)
		var category platform.Channel
		err := p.pacer.Do(ctx, "create_category", func() error {
			var cerr error
			category, cerr = conv.Guild.CreateChannel(ctx, platform.ChannelSpec{
				Name:       cat.Name,
				Kind:       platform.KindCategory,
				Position:   cat.Position,
				Overwrites: toOverwrites(catSets),
			})
			return cerr
		})
		if err != nil {
			log.Warn("category create failed", "stage", "categories", "item", cat.Name, "error", err)
			conv.Sayf(ctx, "⚠️ Error creating category %s: %v", cat.Name, err)
			if !conv.Proceed(ctx, "Would you like to continue with the next category? (yes/no)") {
				return false
			}
			continue
		}
		conv.Sayf(ctx, "✅ Created category: %s", category.Name)

		for _, ch := range cat.Channels {
			if !p.createPlannedChannel(ctx, conv, category.ID, catSets, ch, roleIDs) {
				return false
			}
		}
	}

	if plan.ServerConfig != nil {
		conv.Say(ctx, "⚙️ Updating server settings...")
		sc := plan.ServerConfig
		err := p.pacer.Do(ctx, "edit_guild", func() error {
			return conv.Guild.Edit(ctx, platform.Settings{
				Name:                  sc.Name,
				VerificationLevel:     sc.VerificationLevel,
				ExplicitContentFilter: sc.ExplicitContentFilter,
				AFKTimeout:            sc.AFKTimeout,
			})
		})
		if err != nil {
			log.Warn("settings update failed", "stage", "settings", "error", err)
			conv.Sayf(ctx, "⚠️ Error updating server settings: %v", err)
			if !conv.Proceed(ctx, "Would you like to continue anyway? (yes/no)") {
				return false
			}
		} else {
			conv.Say(ctx, "✅ Server settings updated")
		}
	}

	conv.Say(ctx, "✨ Server structure creation completed!")
	log.Info("plan applied", "roles", len(plan.Roles), "categories", len(plan.Categories), "channels", plan.ChannelCount())
	return true
}

// createPlannedChannel returns false when the requester stopped the run.
func (p *Provisioner) createPlannedChannel(ctx context.Context, conv *Conversation, parentID string, catSets map[string]perm.Set, ch generator.Channel, roleIDs map[string]string) bool {
	kind, ok := platform.KindFromString(ch.Type)
	if !ok {
		conv.Sayf(ctx, "⚠️ Skipping channel %s: unsupported type %q", ch.Name, ch.Type)
		return true
	}

	sets := make(map[string]perm.Set, len(catSets))
	for id, s := range catSets {
		sets[id] = s
	}
	for id, s := range resolveOverwrites(ch.Permissions, roleIDs) {
		sets[id] = sets[id].Merge(s)
	}

	spec := platform.ChannelSpec{
		Name:       ch.Name,
		Kind:       kind,
		ParentID:   parentID,
		Position:   ch.Position,
		Overwrites: toOverwrites(sets),
	}
	switch kind {
	case platform.KindText:
		spec.Topic = ch.Topic
		spec.SlowmodeDelay = ch.SlowmodeDelay
		spec.NSFW = ch.NSFW
	case platform.KindForum:
		spec.Topic = ch.Topic
	}

	err := p.pacer.Do(ctx, "create_"+kind.String(), func() error {
		_, cerr := conv.Guild.CreateChannel(ctx, spec)
		return cerr
	})
	if err != nil {
		p.logger.Warn("channel create failed", "guild", conv.Guild.ID(), "stage", "channels", "item", ch.Name, "error", err)
		conv.Sayf(ctx, "⚠️ Error creating %s channel %s: %v", kind, ch.Name, err)
		return conv.Proceed(ctx, "Would you like to continue with the next channel? (yes/no)")
	}
	conv.Sayf(ctx, "✅ Created %s channel: %s", kind, ch.Name)
	return true
}

func (p *Provisioner) createRole(ctx context.Context, g platform.Guild, name, color string, hoist, mentionable bool, allow perm.Permission) (platform.Role, error) {
	rgb, err := platform.ParseColor(color)
	if err != nil {
		return platform.Role{}, err
	}
	var role platform.Role
	err = p.pacer.Do(ctx, "create_role", func() error {
		var cerr error
		role, cerr = g.CreateRole(ctx, platform.RoleSpec{
			Name:        name,
			Color:       rgb,
			Hoist:       hoist,
			Mentionable: mentionable,
			Permissions: allow,
		})
		return cerr
	})
	return role, err
}

// clean deletes every channel except the bot channel and every role except
// everyone, the bot role and integration-managed roles. It returns the
// number of items that could not be deleted.
func (p *Provisioner) clean(ctx context.Context, conv *Conversation) (int, error) {
	g := conv.Guild
	failed := 0

	conv.Say(ctx, "🧹 Cleaning up existing channels...")
	channels, err := g.Channels(ctx)
	if err != nil {
		return 0, fmt.Errorf("list channels: %w", err)
	}
	for _, ch := range channels {
		if ch.Name == p.scaffold.ChannelName {
			continue
		}
		if err := p.pacer.Do(ctx, "delete_channel", func() error { return g.DeleteChannel(ctx, ch.ID) }); err != nil {
			failed++
			conv.Sayf(ctx, "⚠️ Cannot delete channel: %s (%v)", ch.Name, err)
		}
	}

	conv.Say(ctx, "🧹 Cleaning up existing roles...")
	roles, err := g.Roles(ctx)
	if err != nil {
		return failed, fmt.Errorf("list roles: %w", err)
	}
	for _, r := range roles {
		if r.Everyone || r.Managed || r.Name == p.scaffold.RoleName {
			continue
		}
		if err := p.pacer.Do(ctx, "delete_role", func() error { return g.DeleteRole(ctx, r.ID) }); err != nil {
			failed++
			conv.Sayf(ctx, "⚠️ Cannot delete role: %s (%v)", r.Name, err)
		}
	}
	return failed, nil
}

// resolveOverwrites maps role names to created role IDs. Names without a
// created role are dropped.
func resolveOverwrites(byName map[string]perm.Set, roleIDs map[string]string) map[string]perm.Set {
	out := make(map[string]perm.Set, len(byName))
	for name, set := range byName {
		id, ok := roleIDs[name]
		if !ok {
			continue
		}
		out[id] = set
	}
	return out
}

// toOverwrites drops sets that neither allow nor deny anything.
func toOverwrites(sets map[string]perm.Set) []platform.Overwrite {
	var out []platform.Overwrite
	for id, s := range sets {
		if s.IsZero() {
			continue
		}
		out = append(out, platform.Overwrite{TargetID: id, Allow: s.Allow, Deny: s.Deny})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TargetID < out[j].TargetID })
	return out
}
