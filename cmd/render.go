package main

import (
	"chat-sim/domain/chat"
	"chat-sim/notify"
	"chat-sim/projection"
	"chat-sim/services"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

const timeLayout = "15:04"

var kindColours = map[notify.Kind]color.Style{
	notify.Success: color.New(color.FgGreen),
	notify.Error:   color.New(color.FgRed),
	notify.Info:    color.New(color.FgCyan),
}

func paint(display DisplayConfig, kind notify.Kind, text string) string {
	style, ok := kindColours[kind]
	if !display.Colours || !ok {
		return text
	}
	return style.Render(text)
}

func bold(display DisplayConfig, text string) string {
	if !display.Colours {
		return text
	}
	return color.New(color.OpBold).Render(text)
}

// truncate cuts text to width runes, marking the cut with an ellipsis.
func truncate(text string, width int) string {
	runes := []rune(text)
	if width <= 0 || len(runes) <= width {
		return text
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}

func shortID(id string) string {
	return truncate(id, 8)
}

func renderSidebar(out *syncWriter, items []services.ConversationItem, tab projection.Tab, query string, display DisplayConfig) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s", bold(display, "Conversations ["+string(tab)+"]"))
	if query != "" {
		fmt.Fprintf(&b, " matching %q", query)
	}
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString("  no conversation\n")
		out.write(b.String())
		return
	}

	table := tablewriter.NewWriter(&b)
	table.SetHeader([]string{"", "ID", "Name", "Last message", "When", "Unread"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("  ")
	for _, item := range items {
		table.Append([]string{
			lo.Ternary(item.Active, ">", ""),
			string(item.ID),
			sidebarName(item),
			truncate(item.Preview, display.Width),
			item.TimeAgo,
			lo.Ternary(item.Unread > 0, strconv.Itoa(item.Unread), ""),
		})
	}
	table.Render()
	out.write(b.String())
}

func sidebarName(item services.ConversationItem) string {
	if item.Kind == chat.Group {
		return item.Name + " (group)"
	}
	if item.Presence == chat.Online {
		return item.Name + " •"
	}
	return item.Name
}

func renderThread(out *syncWriter, view services.ThreadView, me chat.UserID, loc *time.Location, display DisplayConfig) {
	if loc == nil {
		loc = time.Local
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s", bold(display, view.Name))
	if view.Status != "" {
		fmt.Fprintf(&b, "  %s", view.Status)
	}
	b.WriteString("\n")

	for _, group := range view.Groups {
		fmt.Fprintf(&b, "  -- %s --\n", group.Label)
		for _, entry := range group.Entries {
			renderEntry(&b, entry, view.Accounts, me, loc, display)
		}
	}
	if len(view.Groups) == 0 {
		b.WriteString("  no messages yet\n")
	}
	if view.Typing != nil {
		fmt.Fprintf(&b, "  %s is typing...\n", view.Typing.Name)
	}
	out.write(b.String())
}

func renderEntry(b *strings.Builder, entry projection.Entry, accounts map[chat.UserID]chat.User, me chat.UserID,
	loc *time.Location, display DisplayConfig) {
	m := entry.Message
	if entry.ShowAvatar {
		name := string(m.SenderID)
		if u, ok := accounts[m.SenderID]; ok {
			name = u.Name
		}
		if m.SenderID == me {
			name = "You"
		}
		fmt.Fprintf(b, "  %s\n", bold(display, name))
	}

	line := fmt.Sprintf("    %s %s", m.CreatedAt.In(loc).Format(timeLayout), truncate(m.Content, display.Width))
	if m.SenderID == me {
		line += " [" + string(m.Status) + "]"
	}
	fmt.Fprintf(b, "%s  (%s)\n", line, m.ID)

	for _, a := range m.Attachments {
		details := []string{string(a.Kind)}
		if size := projection.AttachmentSize(a.Size); size != "" {
			details = append(details, size)
		}
		fmt.Fprintf(b, "      + %s (%s)\n", a.Name, strings.Join(details, ", "))
	}
	if len(m.Reactions) > 0 {
		emojis := lo.Map(m.Reactions, func(r chat.Reaction, _ int) string { return r.Emoji })
		fmt.Fprintf(b, "      %s\n", strings.Join(emojis, " "))
	}
}

func renderNotices(out *syncWriter, queue []notify.Notice, display DisplayConfig) {
	if len(queue) == 0 {
		out.write("No pending notice\n")
		return
	}
	var b strings.Builder
	for _, n := range queue {
		fmt.Fprintf(&b, "  %s  %s\n", n.ID, paint(display, n.Kind, string(n.Kind)+": "+n.Message))
	}
	out.write(b.String())
}
