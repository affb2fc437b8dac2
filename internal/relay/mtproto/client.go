package mtproto

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"net"
	"path/filepath"
	"sync"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/dcs"
	"github.com/gotd/td/tg"
	"golang.org/x/net/proxy"

	"github.com/zulandar/semaphore/internal/models"
	"github.com/zulandar/semaphore/internal/relay"
)

// Opts holds parameters for creating a Client.
type Opts struct {
	ClientID string
	Kind     string // models.ClientKindUser or models.ClientKindBot
	Phone    string // user clients
	Token    string // bot clients
	APIID    int
	APIHash  string
	// SessionsDir holds one session file per client ID.
	SessionsDir string
	// Proxy is an optional SOCKS5 address ("host:port").
	Proxy string
}

// Client implements relay.Transport over gotd's MTProto client. One Client
// owns one authenticated Telegram session.
type Client struct {
	opts  Opts
	login *loginBridge
	peers *peerCache

	mu   sync.Mutex
	api  *tg.Client
	self relay.UserInfo
}

// New validates opts and returns an unconnected Client.
func New(opts Opts) (*Client, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("mtproto: client ID is required")
	}
	if opts.APIID == 0 || opts.APIHash == "" {
		return nil, fmt.Errorf("mtproto: api_id and api_hash are required")
	}
	switch opts.Kind {
	case models.ClientKindUser:
		if opts.Phone == "" {
			return nil, fmt.Errorf("mtproto: phone is required for user clients")
		}
	case models.ClientKindBot:
		if opts.Token == "" {
			return nil, fmt.Errorf("mtproto: token is required for bot clients")
		}
	default:
		return nil, fmt.Errorf("mtproto: unknown client kind %q", opts.Kind)
	}
	if opts.SessionsDir == "" {
		opts.SessionsDir = "sessions"
	}
	return &Client{
		opts:  opts,
		login: newLoginBridge(opts.Phone),
		peers: newPeerCache(),
	}, nil
}

// Run connects, authenticates, and blocks dispatching updates until the
// context is cancelled or the connection dies.
func (c *Client) Run(ctx context.Context, h relay.Handlers) error {
	dispatcher := tg.NewUpdateDispatcher()

	options := telegram.Options{
		SessionStorage: &session.FileStorage{
			Path: filepath.Join(c.opts.SessionsDir, c.opts.ClientID+".session"),
		},
		UpdateHandler: dispatcher,
	}
	if c.opts.Proxy != "" {
		dialer, err := socks5Dialer(c.opts.Proxy)
		if err != nil {
			return err
		}
		options.Resolver = dcs.Plain(dcs.PlainOptions{Dial: dialer})
	}

	client := telegram.NewClient(c.opts.APIID, c.opts.APIHash, options)

	onMessage := func(msg *tg.Message, e tg.Entities, edited bool) {
		if msg.Out {
			return
		}
		c.peers.rememberEntities(e)
		if h.OnMessage != nil {
			h.OnMessage(c.toRelayMessage(msg, edited))
		}
	}
	dispatcher.OnNewMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewMessage) error {
		if msg, ok := u.Message.(*tg.Message); ok {
			onMessage(msg, e, false)
		}
		return nil
	})
	dispatcher.OnNewChannelMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateNewChannelMessage) error {
		if msg, ok := u.Message.(*tg.Message); ok {
			onMessage(msg, e, false)
		}
		return nil
	})
	dispatcher.OnEditMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateEditMessage) error {
		if msg, ok := u.Message.(*tg.Message); ok {
			onMessage(msg, e, true)
		}
		return nil
	})
	dispatcher.OnEditChannelMessage(func(ctx context.Context, e tg.Entities, u *tg.UpdateEditChannelMessage) error {
		if msg, ok := u.Message.(*tg.Message); ok {
			onMessage(msg, e, true)
		}
		return nil
	})

	return client.Run(ctx, func(ctx context.Context) error {
		if err := c.authenticate(ctx, client); err != nil {
			return err
		}

		self, err := client.Self(ctx)
		if err != nil {
			return fmt.Errorf("mtproto: resolve self: %w", err)
		}

		c.mu.Lock()
		c.api = client.API()
		c.self = relay.UserInfo{
			ID:        self.ID,
			Username:  self.Username,
			FirstName: self.FirstName,
			Phone:     self.Phone,
			IsBot:     self.Bot,
		}
		c.mu.Unlock()
		c.login.setState(relay.LoginCompleted)

		if h.OnReady != nil {
			h.OnReady(c.Self())
		}
		<-ctx.Done()
		return ctx.Err()
	})
}

func (c *Client) authenticate(ctx context.Context, client *telegram.Client) error {
	if c.opts.Kind == models.ClientKindBot {
		status, err := client.Auth().Status(ctx)
		if err != nil {
			return fmt.Errorf("mtproto: auth status: %w", err)
		}
		if status.Authorized {
			return nil
		}
		if _, err := client.Auth().Bot(ctx, c.opts.Token); err != nil {
			return fmt.Errorf("mtproto: bot auth: %w", err)
		}
		return nil
	}
	flow := auth.NewFlow(c.login, auth.SendCodeOptions{})
	if err := client.Auth().IfNecessary(ctx, flow); err != nil {
		return fmt.Errorf("mtproto: user auth: %w", err)
	}
	return nil
}

// Send delivers one message, re-attaching the source media when present.
func (c *Client) Send(ctx context.Context, req relay.SendRequest) (int64, error) {
	api, err := c.apiClient()
	if err != nil {
		return 0, err
	}
	peer, err := c.peers.resolve(req.ChatID)
	if err != nil {
		return 0, err
	}
	randomID, err := randomID()
	if err != nil {
		return 0, err
	}

	var updates tg.UpdatesClass
	if media := inputMedia(req.Media); media != nil {
		updates, err = api.MessagesSendMedia(ctx, &tg.MessagesSendMediaRequest{
			Peer:     peer,
			Media:    media,
			Message:  req.Text,
			RandomID: randomID,
		})
	} else {
		updates, err = api.MessagesSendMessage(ctx, &tg.MessagesSendMessageRequest{
			Peer:      peer,
			Message:   req.Text,
			RandomID:  randomID,
			NoWebpage: req.DisablePreview,
		})
	}
	if err != nil {
		return 0, fmt.Errorf("mtproto: send to %s: %w", req.ChatID, err)
	}
	return sentMessageID(updates), nil
}

// History fetches messages from a chat, newest first.
func (c *Client) History(ctx context.Context, chatID string, req relay.HistoryRequest) ([]relay.Message, error) {
	api, err := c.apiClient()
	if err != nil {
		return nil, err
	}
	peer, err := c.peers.resolve(chatID)
	if err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	res, err := api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:     peer,
		OffsetID: int(req.OffsetID),
		Limit:    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("mtproto: history of %s: %w", chatID, err)
	}

	var raw []tg.MessageClass
	switch h := res.(type) {
	case *tg.MessagesMessages:
		c.peers.rememberUsersChats(h.Users, h.Chats)
		raw = h.Messages
	case *tg.MessagesMessagesSlice:
		c.peers.rememberUsersChats(h.Users, h.Chats)
		raw = h.Messages
	case *tg.MessagesChannelMessages:
		c.peers.rememberUsersChats(h.Users, h.Chats)
		raw = h.Messages
	default:
		return nil, fmt.Errorf("mtproto: history of %s: unexpected response %T", chatID, res)
	}

	out := make([]relay.Message, 0, len(raw))
	for _, mc := range raw {
		msg, ok := mc.(*tg.Message)
		if !ok {
			continue
		}
		out = append(out, c.toRelayMessage(msg, false))
	}
	return out, nil
}

// Dialogs returns a snapshot of the account's open chats and feeds the
// peer cache.
func (c *Client) Dialogs(ctx context.Context, limit int) ([]relay.Chat, error) {
	api, err := c.apiClient()
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	res, err := api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		Limit:      limit,
		OffsetPeer: &tg.InputPeerEmpty{},
	})
	if err != nil {
		return nil, fmt.Errorf("mtproto: dialogs: %w", err)
	}

	var users []tg.UserClass
	var chats []tg.ChatClass
	switch d := res.(type) {
	case *tg.MessagesDialogs:
		users, chats = d.Users, d.Chats
	case *tg.MessagesDialogsSlice:
		users, chats = d.Users, d.Chats
	default:
		return nil, fmt.Errorf("mtproto: dialogs: unexpected response %T", res)
	}
	c.peers.rememberUsersChats(users, chats)

	var out []relay.Chat
	for _, uc := range users {
		u, ok := uc.(*tg.User)
		if !ok || u.Self {
			continue
		}
		title := u.FirstName
		if u.Username != "" {
			title = u.Username
		}
		out = append(out, relay.Chat{
			ID:    CanonicalChatID(&tg.PeerUser{UserID: u.ID}),
			Title: title,
			Kind:  "user",
		})
	}
	for _, cc := range chats {
		switch ch := cc.(type) {
		case *tg.Chat:
			out = append(out, relay.Chat{
				ID:    CanonicalChatID(&tg.PeerChat{ChatID: ch.ID}),
				Title: ch.Title,
				Kind:  "group",
			})
		case *tg.Channel:
			kind := "channel"
			if ch.Megagroup {
				kind = "group"
			}
			out = append(out, relay.Chat{
				ID:    CanonicalChatID(&tg.PeerChannel{ChannelID: ch.ID}),
				Title: ch.Title,
				Kind:  kind,
			})
		}
	}
	return out, nil
}

// Self returns the authenticated identity.
func (c *Client) Self() relay.UserInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.self
}

// SubmitCode implements relay.InteractiveAuth.
func (c *Client) SubmitCode(code string) error { return c.login.SubmitCode(code) }

// SubmitPassword implements relay.InteractiveAuth.
func (c *Client) SubmitPassword(password string) error { return c.login.SubmitPassword(password) }

// LoginState implements relay.InteractiveAuth.
func (c *Client) LoginState() string { return c.login.State() }

func (c *Client) apiClient() (*tg.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.api == nil {
		return nil, fmt.Errorf("mtproto: not connected")
	}
	return c.api, nil
}

func (c *Client) toRelayMessage(msg *tg.Message, edited bool) relay.Message {
	var media interface{}
	if m, ok := msg.GetMedia(); ok {
		media = m
	}
	return relay.Message{
		ID:     int64(msg.ID),
		ChatID: CanonicalChatID(msg.PeerID),
		Text:   msg.Message,
		Kind:   classify(msg),
		Edited: edited,
		Date:   time.Unix(int64(msg.Date), 0),
		Media:  media,
	}
}

// inputMedia converts a received media payload into its sendable form.
// Web pages travel as plain text previews, so they map to nil.
func inputMedia(media interface{}) tg.InputMediaClass {
	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		photo, ok := m.Photo.(*tg.Photo)
		if !ok {
			return nil
		}
		return &tg.InputMediaPhoto{
			ID: &tg.InputPhoto{
				ID:            photo.ID,
				AccessHash:    photo.AccessHash,
				FileReference: photo.FileReference,
			},
		}
	case *tg.MessageMediaDocument:
		doc, ok := m.Document.(*tg.Document)
		if !ok {
			return nil
		}
		return &tg.InputMediaDocument{
			ID: &tg.InputDocument{
				ID:            doc.ID,
				AccessHash:    doc.AccessHash,
				FileReference: doc.FileReference,
			},
		}
	default:
		return nil
	}
}

// sentMessageID digs the new message ID out of a send response.
func sentMessageID(updates tg.UpdatesClass) int64 {
	switch u := updates.(type) {
	case *tg.UpdateShortSentMessage:
		return int64(u.ID)
	case *tg.Updates:
		for _, upd := range u.Updates {
			switch m := upd.(type) {
			case *tg.UpdateMessageID:
				return int64(m.ID)
			case *tg.UpdateNewMessage:
				if msg, ok := m.Message.(*tg.Message); ok {
					return int64(msg.ID)
				}
			case *tg.UpdateNewChannelMessage:
				if msg, ok := m.Message.(*tg.Message); ok {
					return int64(msg.ID)
				}
			}
		}
	}
	return 0
}

// socks5Dialer builds a DC dial function routed through a SOCKS5 proxy.
func socks5Dialer(addr string) (func(ctx context.Context, network, address string) (net.Conn, error), error) {
	d, err := proxy.SOCKS5("tcp", addr, nil, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("mtproto: socks5 proxy %s: %w", addr, err)
	}
	cd, ok := d.(proxy.ContextDialer)
	if !ok {
		return nil, fmt.Errorf("mtproto: socks5 proxy %s: dialer has no context support", addr)
	}
	return cd.DialContext, nil
}

func randomID() (int64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("mtproto: random ID: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
