package main

import (
	"bytes"
	"chat-sim/clock"
	"chat-sim/contract"
	"chat-sim/domain/chat"
	"chat-sim/domain/event"
	"chat-sim/notify"
	"chat-sim/repositories"
	"chat-sim/seed"
	"chat-sim/services"
	"chat-sim/store"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type follow struct {
	view         string
	conversation chat.ConversationID
}

type fakeViews struct {
	followed   []follow
	unfollowed []follow
}

func (f *fakeViews) Follow(viewID string, conversationID chat.ConversationID, _ contract.EventSink) {
	f.followed = append(f.followed, follow{viewID, conversationID})
}

func (f *fakeViews) Unfollow(viewID string, conversationID chat.ConversationID) {
	f.unfollowed = append(f.unfollowed, follow{viewID, conversationID})
}

type fixture struct {
	shell   *shell
	out     *bytes.Buffer
	clock   *clock.Manual
	views   *fakeViews
	notices *notify.Broadcaster
}

// output returns what was printed since the previous call.
func (f *fixture) output() string {
	s := f.out.String()
	f.out.Reset()
	return s
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := slogt.New(t)
	data, err := seed.Demo(epoch)
	require.NoError(t, err)
	clk := clock.NewManual(epoch)
	account := repositories.NewAccountRepository(data.Account)
	s := store.New(log, clk, account, data, nil, store.DefaultConfig(), data.Conversations)
	notices := notify.NewBroadcaster(log, clk, notify.DefaultTTL)
	t.Cleanup(s.Close)
	t.Cleanup(notices.Close)

	out := &bytes.Buffer{}
	views := &fakeViews{}
	sh := newShell(
		services.NewChatService(s, account, clk, time.UTC),
		services.NewAccountService(account, notices, log),
		notices, views, account, out,
		DisplayConfig{Colours: false, Width: 48},
		time.UTC,
	)
	notices.Subscribe(sh.onNotices)
	return &fixture{shell: sh, out: out, clock: clk, views: views, notices: notices}
}

func TestShell_List(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.shell.exec("list")
	out := f.output()
	req.Contains(out, "Conversations [all]")
	req.Contains(out, "Jane Smith")
	req.Contains(out, "Team Alpha (group)")

	// When filtering on the groups tab
	f.shell.exec("list groups")
	out = f.output()
	req.Contains(out, "Team Alpha")
	req.NotContains(out, "Jane Smith")

	// And searching a name that matches nothing
	f.shell.exec("search nobody")
	req.Contains(f.output(), "no conversation")
}

func TestShell_OpenFollowsConversation(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.shell.exec("open 1")
	out := f.output()

	req.Equal([]follow{{terminalView, "1"}}, f.views.followed)
	req.Contains(out, "Jane Smith")
	req.Contains(out, "Hey there! How are you doing today?")
	req.Contains(out, "+ design_concept.jpg (image, 1000 KiB)")
	req.Contains(out, "👍 ❤️")

	// When another conversation is opened the first one is unfollowed
	f.shell.exec("open 4")
	req.Equal([]follow{{terminalView, "1"}}, f.views.unfollowed)
	req.Equal(follow{terminalView, "4"}, f.views.followed[1])

	// And an unknown conversation leaves the follow untouched
	f.output()
	f.shell.exec("open 42")
	req.Contains(f.output(), `Unknown conversation "42"`)
	req.Len(f.views.followed, 2)
}

func TestShell_SendAndDeliver(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// Given no open conversation, nothing is sent
	f.shell.exec("send hello")
	req.Contains(f.output(), "Nothing sent")

	f.shell.exec("open 2")
	f.output()
	f.shell.exec("send Hello Mike")
	req.Contains(f.output(), "Hello Mike [sent]")

	// When the delivery delay elapses
	f.clock.Advance(time.Second)
	f.shell.exec("show")
	req.Contains(f.output(), "Hello Mike [delivered]")
}

func TestShell_Attach(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "pic.png")
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 8)...)
	req.NoError(os.WriteFile(path, png, 0o600))

	f.shell.exec("open 3")
	f.shell.exec("attach " + path + " my picture")
	out := f.output()
	req.Contains(out, "my picture [sent]")
	req.Contains(out, "+ pic.png (image, 16 B)")

	// A file that does not exist is sent by name
	f.shell.exec("attach song.mp3")
	req.Contains(f.output(), "+ song.mp3 (audio)")
}

func TestShell_Reactions(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)
	f.shell.exec("open 1")
	f.output()

	f.shell.exec("react 106 🎉")
	req.Contains(f.output(), "      🎉\n")

	f.shell.exec("unreact 106")
	req.NotContains(f.output(), "🎉")
}

func TestShell_Notices(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	// When a notice is published it is printed once
	f.shell.exec("toast success Saved")
	out := f.output()
	req.Contains(out, "[success] Saved")

	f.shell.exec("toast info second")
	out = f.output()
	req.Contains(out, "[info] second")
	req.NotContains(out, "Saved")

	// And it can be dismissed with its short id
	id := f.notices.Snapshot()[0].ID
	f.shell.exec("dismiss " + shortID(id))
	req.Len(f.notices.Snapshot(), 1)

	f.shell.exec("toasts")
	req.Contains(f.output(), "info: second")
}

func TestShell_Account(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	f.shell.exec("profile John not-an-email")
	out := f.output()
	req.Contains(out, "[error] Failed to update profile")

	f.shell.exec("presence online")
	req.Contains(f.output(), "You are now online")
}

func TestShell_ConsumePrintsTyping(t *testing.T) {
	f := newFixture(t)

	err := f.shell.Consume(context.Background(), event.TypingStarted{
		Conversation: "1",
		Typing:       chat.Typing{UserID: "2", Name: "Jane Smith"},
	})

	require.NoError(t, err)
	require.Contains(t, f.output(), "Jane Smith is typing...")
}

func TestShell_LoopStopsOnQuit(t *testing.T) {
	req := require.New(t)
	f := newFixture(t)

	err := f.shell.loop(context.Background(), strings.NewReader("open 1\nquit\nsend never\n"))

	req.NoError(err)
	req.Equal([]follow{{terminalView, "1"}}, f.views.unfollowed)
	req.NotContains(f.output(), "never [sent]")
}

func TestShell_LoopStopsAtEndOfInput(t *testing.T) {
	f := newFixture(t)

	err := f.shell.loop(context.Background(), strings.NewReader("help\n"))

	require.NoError(t, err)
}

func TestTruncate(t *testing.T) {
	req := require.New(t)
	req.Equal("hello", truncate("hello", 5))
	req.Equal("hel…", truncate("hello", 4))
	req.Equal("héllo wörld", truncate("héllo wörld", 0))
}
