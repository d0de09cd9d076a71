package main

import (
	"bufio"
	"chat-sim/contract"
	"chat-sim/domain/chat"
	"chat-sim/domain/event"
	"chat-sim/domain/mimetypes"
	"chat-sim/notify"
	"chat-sim/projection"
	"chat-sim/services"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
)

const terminalView = "terminal"

type noticeBoard interface {
	Publish(message string, kind notify.Kind) string
	Dismiss(id string) bool
	Snapshot() []notify.Notice
}

type follower interface {
	Follow(viewID string, conversationID chat.ConversationID, sink contract.EventSink)
	Unfollow(viewID string, conversationID chat.ConversationID)
}

// shell is the terminal rendering layer: it reads commands and prints views.
type shell struct {
	chat     services.IChatService
	accounts services.IAccountService
	notices  noticeBoard
	views    follower
	account  contract.AccountProvider
	out      *syncWriter
	display  DisplayConfig
	loc      *time.Location

	tab       projection.Tab
	query     string
	following chat.ConversationID

	mu   sync.Mutex
	seen map[string]struct{}
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) printf(format string, a ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, a...)
}

func (s *syncWriter) write(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	io.WriteString(s.w, text)
}

func newShell(chatService services.IChatService, accounts services.IAccountService, notices noticeBoard,
	views follower, account contract.AccountProvider, out io.Writer, display DisplayConfig, loc *time.Location) *shell {
	return &shell{
		chat:     chatService,
		accounts: accounts,
		notices:  notices,
		views:    views,
		account:  account,
		out:      &syncWriter{w: out},
		display:  display,
		loc:      loc,
		tab:      projection.AllTab,
		seen:     make(map[string]struct{}),
	}
}

// loop reads commands until quit, end of input or ctx cancellation.
func (s *shell) loop(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()

	s.out.write(helpText)
	s.exec("list")
	for {
		s.out.write("> ")
		select {
		case <-ctx.Done():
			return nil
		case err := <-errs:
			return err
		case line := <-lines:
			if quit := s.exec(line); quit {
				return nil
			}
		}
	}
}

// exec runs one command line and reports whether the shell should stop.
func (s *shell) exec(line string) bool {
	command, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	switch strings.ToLower(command) {
	case "":
	case "help":
		s.out.write(helpText)
	case "quit", "exit":
		s.unfollow()
		return true
	case "list":
		s.list(args)
	case "search":
		s.query = rest
		s.list(nil)
	case "open":
		if len(args) != 1 {
			s.usage("open <conversation>")
			break
		}
		s.open(chat.ConversationID(args[0]))
	case "close":
		s.unfollow()
		s.chat.Close()
	case "show":
		s.show()
	case "send":
		if s.chat.Send(rest) == "" {
			s.out.write("Nothing sent: open a conversation and type a message\n")
			break
		}
		s.show()
	case "attach":
		s.attach(args)
	case "react":
		if len(args) != 2 {
			s.usage("react <message> <emoji>")
			break
		}
		s.chat.React(chat.MessageID(args[0]), args[1])
		s.show()
	case "unreact":
		if len(args) != 1 {
			s.usage("unreact <message>")
			break
		}
		s.chat.Unreact(chat.MessageID(args[0]))
		s.show()
	case "read":
		if len(args) != 1 {
			s.usage("read <conversation>")
			break
		}
		s.chat.MarkRead(chat.ConversationID(args[0]))
		s.list(nil)
	case "typing":
		s.chat.Typing(len(args) == 0 || args[0] != "off")
	case "toast":
		s.toast(args)
	case "toasts":
		renderNotices(s.out, s.notices.Snapshot(), s.display)
	case "dismiss":
		if len(args) != 1 || !s.dismiss(args[0]) {
			s.usage("dismiss <pending notice id>")
		}
	case "profile":
		s.profile(args)
	case "presence":
		if len(args) != 1 {
			s.usage("presence online|away|offline")
			break
		}
		_ = s.accounts.SetPresence(chat.Presence(strings.ToLower(args[0])))
	default:
		s.out.printf("Unknown command %q, type help\n", command)
	}
	return false
}

func (s *shell) list(args []string) {
	if len(args) > 0 {
		if tab, ok := projection.ParseTab(args[0]); ok {
			s.tab = tab
			args = args[1:]
		}
	}
	if len(args) > 0 {
		s.query = strings.Join(args, " ")
	}
	renderSidebar(s.out, s.chat.Sidebar(s.tab, s.query), s.tab, s.query, s.display)
}

func (s *shell) open(id chat.ConversationID) {
	s.chat.Open(id)
	view, ok := s.chat.Thread()
	if !ok || view.ID != id {
		s.out.printf("Unknown conversation %q\n", id)
		return
	}
	s.unfollow()
	s.views.Follow(terminalView, id, s)
	s.following = id
	s.show()
}

func (s *shell) unfollow() {
	if s.following == chat.NoConversation {
		return
	}
	s.views.Unfollow(terminalView, s.following)
	s.following = chat.NoConversation
}

func (s *shell) show() {
	view, ok := s.chat.Thread()
	if !ok {
		s.out.write("No conversation open\n")
		return
	}
	renderThread(s.out, view, s.account.CurrentUser().ID, s.loc, s.display)
}

// attach sends a local file, or a plain file name, as an attachment.
func (s *shell) attach(args []string) {
	if len(args) == 0 {
		s.usage("attach <file> [caption]")
		return
	}
	path := args[0]
	attachment := chat.Attachment{Name: filepath.Base(path), URL: "file://" + path}
	if content, err := os.ReadFile(path); err == nil {
		_, attachment.Kind = mimetypes.Detect(content)
		attachment.Size = lo.ToPtr(int64(len(content)))
		if abs, err := filepath.Abs(path); err == nil {
			attachment.URL = "file://" + abs
		}
	} else {
		attachment.Kind = mimetypes.KindFromName(path)
	}
	if s.chat.Send(strings.Join(args[1:], " "), attachment) == "" {
		s.out.write("Nothing sent: open a conversation first\n")
		return
	}
	s.show()
}

func (s *shell) toast(args []string) {
	if len(args) < 2 {
		s.usage("toast success|error|info <message>")
		return
	}
	s.notices.Publish(strings.Join(args[1:], " "), notify.Kind(strings.ToLower(args[0])))
}

// dismiss accepts a full notice id or the short form printed with the notice.
func (s *shell) dismiss(prefix string) bool {
	n, ok := lo.Find(s.notices.Snapshot(), func(n notify.Notice) bool {
		return strings.HasPrefix(n.ID, strings.TrimSuffix(prefix, "…"))
	})
	return ok && s.notices.Dismiss(n.ID)
}

func (s *shell) profile(args []string) {
	if len(args) < 2 {
		s.usage("profile <name> <email> [avatar url]")
		return
	}
	req := services.ProfileRequest{Name: args[0], Email: args[1]}
	if len(args) > 2 {
		req.Avatar = args[2]
	}
	if _, err := s.accounts.UpdateProfile(req); err != nil {
		s.out.printf("  %s\n", paint(s.display, notify.Error, err.Error()))
	}
}

func (s *shell) usage(text string) {
	s.out.printf("Usage: %s\n", text)
}

// Consume prints the asynchronous changes of the followed conversation.
func (s *shell) Consume(_ context.Context, e event.DomainEvent) error {
	switch evt := e.(type) {
	case event.TypingStarted:
		s.out.printf("\n  %s is typing...\n", evt.Typing.Name)
	case event.MessageDelivered:
		s.out.printf("\n  %s delivered\n", evt.MessageID)
	}
	return nil
}

// onNotices prints the notices that were not shown yet.
func (s *shell) onNotices(queue []notify.Notice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending := make(map[string]struct{}, len(queue))
	for _, n := range queue {
		pending[n.ID] = struct{}{}
		if _, ok := s.seen[n.ID]; ok {
			continue
		}
		s.out.printf("\n  %s\n", paint(s.display, n.Kind, fmt.Sprintf("[%s] %s (%s)", n.Kind, n.Message, shortID(n.ID))))
	}
	s.seen = pending
}

const helpText = `Commands:
  list [all|chats|groups] [query]   conversations of a tab, filtered by query
  search <query>                    change the filter
  open <id> | close | show          open, close or print the conversation
  send <text>                       send a message
  attach <file> [caption]           send a file
  react <message> <emoji>           react to a message
  unreact <message>                 remove your reaction
  read <id>                         mark a conversation read
  typing [on|off]                   signal that you are typing
  toast <kind> <text> | toasts      publish or list notices
  dismiss <notice>                  dismiss a notice
  profile <name> <email> [avatar]   update your profile
  presence online|away|offline      update your status
  quit
`
