package builder

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"ai_server_builder/perm"
	"ai_server_builder/platform"
)

var _ = Describe("Provisioner", func() {
	var (
		ctx   context.Context
		b     *Builder
		g     *platform.MemoryGuild
		asker *scriptedAsker
		conv  *Conversation
		base  int
	)

	// after returns the calls issued since the scaffold was set up.
	after := func() []string {
		return g.Calls()[base:]
	}

	BeforeEach(func() {
		ctx = context.Background()
		b = newTestBuilder(nil)
		g = platform.NewMemoryGuild(testGuild, testBot)
		g.SeedChannel("general", platform.KindText, "")
		g.SeedRole("old-role", false)
		asker = answers()
	})

	JustBeforeEach(func() {
		conv = scaffolded(b, g, asker)
		base = len(g.Calls())
	})

	Context("with a valid two-category plan", func() {
		It("creates everything in plan order with settings last", func() {
			ok := b.Provisioner.Apply(ctx, conv, mustPlan(gamingPlan))

			Expect(ok).To(BeTrue())
			Expect(after()).To(Equal([]string{
				"delete_channel:general",
				"delete_role:old-role",
				"create_role:Admin",
				"create_role:Moderator",
				"create_role:Member",
				"create_role:Guest",
				"create_category:📢 Info",
				"create_text:📜-rules",
				"create_text:📣-announcements",
				"create_category:🎮 Gaming",
				"create_text:💬-general",
				"create_voice:🔊-lobby",
				"edit_guild:Gaming Hub",
			}))
			Expect(g.Settings()).To(Equal(platform.Settings{
				Name: "Gaming Hub", VerificationLevel: 1, ExplicitContentFilter: 1, AFKTimeout: 300,
			}))
			Expect(asker.asked()).To(BeZero())
		})

		It("parents channels and carries category overwrites for known roles", func() {
			Expect(b.Provisioner.Apply(ctx, conv, mustPlan(gamingPlan))).To(BeTrue())

			roles, _ := g.Roles(ctx)
			member, ok := platform.FindRole(roles, "Member")
			Expect(ok).To(BeTrue())

			channels, _ := g.Channels(ctx)
			info, _ := platform.FindChannel(channels, "📢 Info")
			rules, _ := platform.FindChannel(channels, "📜-rules")
			Expect(rules.ParentID).To(Equal(info.ID))

			spec, ok := g.ChannelSpec(rules.ID)
			Expect(ok).To(BeTrue())
			Expect(spec.Overwrites).To(ConsistOf(platform.Overwrite{TargetID: member.ID, Deny: perm.SendMessages}))

			general, _ := platform.FindChannel(channels, "💬-general")
			spec, _ = g.ChannelSpec(general.ID)
			Expect(spec.SlowmodeDelay).To(Equal(5))
			Expect(spec.Overwrites).To(BeEmpty())
		})
	})

	Context("with forum and unsupported channel types", func() {
		const plan = `{
  "server_config": {"name": "Help Desk"},
  "categories": [
    {"name": "Support", "position": 0,
     "permissions": {"Member": {"view_channel": true, "send_messages": true}, "@everyone": {}},
     "channels": [
       {"name": "stage-room", "type": "stage"},
       {"name": "questions", "type": "forum", "topic": "Ask here", "slowmode_delay": 30,
        "permissions": {"Member": {"send_messages": false}}}
     ]}
  ],
  "roles": [{"name": "Member", "color": "#112233", "permissions": {}}]
}`

		It("skips the unsupported channel, drops empty overwrites and merges channel overwrites over the category", func() {
			Expect(b.Provisioner.Apply(ctx, conv, mustPlan(plan))).To(BeTrue())

			Expect(after()).To(Equal([]string{
				"delete_channel:general",
				"delete_role:old-role",
				"create_role:Member",
				"create_category:Support",
				"create_forum:questions",
				"edit_guild:Help Desk",
			}))
			Expect(hasMessage(g.Messages(conv.ChannelID), "⚠️ Skipping channel stage-room")).To(BeTrue())

			roles, _ := g.Roles(ctx)
			member, _ := platform.FindRole(roles, "Member")
			channels, _ := g.Channels(ctx)
			forum, ok := platform.FindChannel(channels, "questions")
			Expect(ok).To(BeTrue())

			spec, _ := g.ChannelSpec(forum.ID)
			Expect(spec.Kind).To(Equal(platform.KindForum))
			Expect(spec.Topic).To(Equal("Ask here"))
			Expect(spec.SlowmodeDelay).To(BeZero())
			Expect(spec.Overwrites).To(ConsistOf(platform.Overwrite{
				TargetID: member.ID, Allow: perm.ViewChannel, Deny: perm.SendMessages,
			}))

			support, _ := platform.FindChannel(channels, "Support")
			spec, _ = g.ChannelSpec(support.ID)
			Expect(spec.Overwrites).To(ConsistOf(platform.Overwrite{
				TargetID: member.ID, Allow: perm.ViewChannel | perm.SendMessages,
			}))
		})
	})

	Context("when one channel fails and the requester continues", func() {
		BeforeEach(func() {
			asker = answers("yes")
			g.Fail = func(op, name string) error {
				if op == "create_text" && name == "📣-announcements" {
					return errors.New("400 Bad Request: duplicate channel name")
				}
				return nil
			}
		})

		It("skips only the failed channel", func() {
			ok := b.Provisioner.Apply(ctx, conv, mustPlan(gamingPlan))

			Expect(ok).To(BeTrue())
			Expect(after()).NotTo(ContainElement("create_text:📣-announcements"))
			Expect(after()).To(ContainElements("create_text:💬-general", "create_voice:🔊-lobby", "edit_guild:Gaming Hub"))
			Expect(asker.asked()).To(Equal(1))
			Expect(hasMessage(g.Messages(conv.ChannelID), "⚠️ Error creating text channel 📣-announcements")).To(BeTrue())
		})
	})

	Context("when the continue question times out", func() {
		BeforeEach(func() {
			g.Fail = func(op, name string) error {
				if op == "create_role" && name == "Moderator" {
					return errors.New("500 Internal Server Error")
				}
				return nil
			}
		})

		It("aborts without issuing further calls", func() {
			ok := b.Provisioner.Apply(ctx, conv, mustPlan(gamingPlan))

			Expect(ok).To(BeFalse())
			calls := after()
			Expect(calls[len(calls)-1]).To(Equal("create_role:Admin"))
			Expect(hasMessage(g.Messages(conv.ChannelID), "No response received, stopping setup.")).To(BeTrue())
		})
	})

	Context("when the requester answers no", func() {
		BeforeEach(func() {
			asker = answers("no")
			g.Fail = func(op, _ string) error {
				if op == "create_category" {
					return errors.New("403 Forbidden")
				}
				return nil
			}
		})

		It("stops at the failed category", func() {
			Expect(b.Provisioner.Apply(ctx, conv, mustPlan(gamingPlan))).To(BeFalse())
			Expect(after()).NotTo(ContainElement(HavePrefix("create_text:")))
			Expect(after()).NotTo(ContainElement(HavePrefix("edit_guild:")))
		})
	})

	Context("cleaning", func() {
		BeforeEach(func() {
			g.SeedRole("Some Integration", true)
		})

		It("keeps the scaffold, everyone and managed roles", func() {
			Expect(b.Provisioner.Apply(ctx, conv, mustPlan(gamingPlan))).To(BeTrue())

			roles, _ := g.Roles(ctx)
			names := make([]string, 0, len(roles))
			for _, r := range roles {
				names = append(names, r.Name)
			}
			Expect(names).To(ContainElements("@everyone", DefaultRoleName, "Some Integration"))
			Expect(names).NotTo(ContainElement("old-role"))

			channels, _ := g.Channels(ctx)
			_, ok := platform.FindChannel(channels, DefaultChannelName)
			Expect(ok).To(BeTrue())
		})

		It("asks once before creating when deletions failed", func() {
			asker.answers = []string{"no"}
			g.Fail = func(op, _ string) error {
				if op == "delete_channel" {
					return errors.New("403 Forbidden")
				}
				return nil
			}

			Expect(b.Provisioner.Apply(ctx, conv, mustPlan(gamingPlan))).To(BeFalse())
			Expect(asker.asked()).To(Equal(1))
			Expect(after()).NotTo(ContainElement(HavePrefix("create_")))
			Expect(hasMessage(g.Messages(conv.ChannelID), "⚠️ Cannot delete channel: general")).To(BeTrue())
		})
	})
})
