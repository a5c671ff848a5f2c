package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/foxzi/wadesk/internal/models"
)

var chatsCmd = &cobra.Command{
	Use:     "chats",
	Aliases: []string{"chat"},
	Short:   "Read and answer conversations",
}

var chatsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List conversations",
	RunE:  runChatsList,
}

var chatsStartCmd = &cobra.Command{
	Use:   "start <contact-id>",
	Short: "Open the conversation with a contact, creating it if needed",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsStart,
}

var chatsShowCmd = &cobra.Command{
	Use:   "show <chat-id>",
	Short: "Print the messages of a conversation and mark it read",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsShow,
}

var chatsSendCmd = &cobra.Command{
	Use:   "send <chat-id> <text>",
	Short: "Send a message",
	Args:  cobra.ExactArgs(2),
	RunE:  runChatsSend,
}

var chatsOpenCmd = &cobra.Command{
	Use:   "open <chat-id>",
	Short: "Interactive conversation: type to send, /retry to resend failed messages, /quit to leave",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatsOpen,
}

var chatsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Poll the inbox and report new messages until interrupted",
	RunE:  runChatsWatch,
}

var (
	sendType    string
	sendMedia   string
	sendRetries int
)

func init() {
	chatsSendCmd.Flags().StringVar(&sendType, "type", string(models.MessageText), "Message type: text, image, document, template or video")
	chatsSendCmd.Flags().StringVar(&sendMedia, "media", "", "Media URL")
	chatsSendCmd.Flags().IntVar(&sendRetries, "retries", 0, "Resend a failed message up to this many times")

	chatsCmd.AddCommand(chatsListCmd)
	chatsCmd.AddCommand(chatsStartCmd)
	chatsCmd.AddCommand(chatsShowCmd)
	chatsCmd.AddCommand(chatsSendCmd)
	chatsCmd.AddCommand(chatsOpenCmd)
	chatsCmd.AddCommand(chatsWatchCmd)
}

func printChat(c models.ChatSession) {
	last := ""
	if c.LastMessage != nil {
		last = c.LastMessage.Text
		if len(last) > 40 {
			last = last[:37] + "..."
		}
	}
	unread := ""
	if c.UnreadCount > 0 {
		unread = fmt.Sprintf("(%d)", c.UnreadCount)
	}
	fmt.Printf("%-36s  %-24s  %-5s  %s\n", c.ID, c.Contact.Name, unread, last)
}

func printMessage(m models.Message) {
	from := "them"
	if m.Outgoing() {
		from = "me"
	}
	mark := string(m.Status)
	switch m.Delivery {
	case models.DeliveryPending:
		mark = "sending"
	case models.DeliveryFailed:
		mark = "FAILED " + m.ID
	}
	text := m.Text
	if m.MediaURL != "" {
		text = strings.TrimSpace(fmt.Sprintf("%s [%s %s]", text, m.Type, m.MediaURL))
	}
	if !m.Outgoing() {
		mark = ""
	}
	fmt.Printf("[%s] %-4s  %s  %s\n", m.Timestamp.Local().Format("Jan 02 15:04"), from, text, mark)
}

func runChatsList(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := app.Chats.FetchChats(ctx); err != nil {
		return err
	}

	fmt.Printf("%-36s  %-24s  %-5s  %s\n", "ID", "Contact", "New", "Last message")
	fmt.Println(strings.Repeat("-", 100))
	for _, c := range app.Chats.Chats() {
		printChat(c)
	}
	return nil
}

func runChatsStart(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := app.Contacts.Fetch(ctx); err != nil {
		return err
	}
	contact, ok := app.Contacts.Get(args[0])
	if !ok {
		return fmt.Errorf("contact %s not found", args[0])
	}
	if err := app.Chats.FetchChats(ctx); err != nil {
		return err
	}

	chat, err := app.Chats.StartChat(ctx, contact)
	if err != nil {
		return err
	}
	fmt.Printf("Chat with %s: %s\n", contact.Name, chat.ID)
	for _, m := range app.Chats.Messages(chat.ID) {
		printMessage(m)
	}
	return nil
}

// selectChat loads the chat list and selects id
func selectChat(ctx context.Context, id string) (models.ChatSession, error) {
	if err := app.Chats.FetchChats(ctx); err != nil {
		return models.ChatSession{}, err
	}
	if err := app.Chats.SelectChat(ctx, id); err != nil {
		return models.ChatSession{}, err
	}
	chat, _ := app.Chats.Chat(id)
	return chat, nil
}

func runChatsShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	chat, err := selectChat(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Chat with %s (%s)\n\n", chat.Contact.Name, chat.Contact.Phone)
	for _, m := range app.Chats.Messages(chat.ID) {
		printMessage(m)
	}
	return nil
}

func runChatsSend(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	chatID := args[0]
	msg, err := app.Chats.SendMessage(ctx, chatID, args[1], models.MessageType(sendType), sendMedia)
	for attempt := 0; err != nil && msg == nil && attempt < sendRetries; attempt++ {
		failed := lastFailed(chatID)
		if failed == "" {
			break
		}
		logger.Warn("message failed, retrying", "chat_id", chatID, "attempt", attempt+1, "error", err)
		msg, err = app.Chats.RetryMessage(ctx, chatID, failed)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Message sent (ID: %s)\n", msg.ID)
	return nil
}

// lastFailed returns the id of the newest failed message in a chat
func lastFailed(chatID string) string {
	msgs := app.Chats.Messages(chatID)
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Delivery == models.DeliveryFailed {
			return msgs[i].ID
		}
	}
	return ""
}

func runChatsOpen(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	chat, err := selectChat(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Chat with %s (%s). /retry resends failed messages, /quit leaves.\n\n", chat.Contact.Name, chat.Contact.Phone)
	// the poller prints incoming messages, the input loop prints our own
	var mu sync.Mutex
	seen := make(map[string]bool)
	show := func(m models.Message) {
		mu.Lock()
		defer mu.Unlock()
		if !seen[m.ID] {
			seen[m.ID] = true
			printMessage(m)
		}
	}
	for _, m := range app.Chats.Messages(chat.ID) {
		show(m)
	}

	poller := app.NewPoller()
	poller.OnPoll = func(received []models.Message, err error) {
		if err != nil {
			return
		}
		for _, m := range received {
			if !m.Outgoing() {
				show(m)
			}
		}
	}
	poller.Start(ctx)
	defer poller.Stop()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			line = strings.TrimSpace(line)
			switch {
			case line == "":
			case line == "/quit":
				return nil
			case line == "/retry":
				for _, m := range app.Chats.Messages(chat.ID) {
					if m.Delivery != models.DeliveryFailed {
						continue
					}
					if sent, err := app.Chats.RetryMessage(ctx, chat.ID, m.ID); err != nil {
						fmt.Printf("retry failed: %v\n", err)
					} else {
						show(*sent)
					}
				}
			default:
				sent, err := app.Chats.SendMessage(ctx, chat.ID, line, models.MessageText, "")
				if err != nil {
					fmt.Printf("send failed: %v (type /retry to resend)\n", err)
					continue
				}
				show(*sent)
			}
		}
	}
}

func runChatsWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	if err := app.Chats.FetchChats(ctx); err != nil {
		return err
	}
	unread := make(map[string]int)
	for _, c := range app.Chats.Chats() {
		unread[c.ID] = c.UnreadCount
	}

	fmt.Println("Watching inbox, press Ctrl+C to stop")

	poller := app.NewPoller()
	poller.OnPoll = func(_ []models.Message, err error) {
		if err != nil {
			fmt.Printf("refresh failed: %v\n", err)
			return
		}
		for _, c := range app.Chats.Chats() {
			if c.UnreadCount > unread[c.ID] {
				printChat(c)
			}
			unread[c.ID] = c.UnreadCount
		}
	}
	poller.Start(ctx)
	defer poller.Stop()

	<-ctx.Done()
	return nil
}
