// Package mtproto implements relay.Transport on the gotd MTProto client.
package mtproto

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/gotd/td/tg"
)

// channelIDBase offsets channel IDs into the canonical negative range used
// by rule configuration: channel 123 becomes "-1000000000123".
const channelIDBase = -1000000000000

// CanonicalChatID maps a Telegram peer to the canonical string chat ID used
// throughout rules and the ledger. Channels map below -10^12, small groups
// to their negated ID, users to their positive ID.
func CanonicalChatID(peer tg.PeerClass) string {
	switch p := peer.(type) {
	case *tg.PeerChannel:
		return strconv.FormatInt(channelIDBase-p.ChannelID, 10)
	case *tg.PeerChat:
		return strconv.FormatInt(-p.ChatID, 10)
	case *tg.PeerUser:
		return strconv.FormatInt(p.UserID, 10)
	default:
		return ""
	}
}

// canonicalChannelID maps a raw channel ID into the canonical range.
func canonicalChannelID(id int64) string {
	return strconv.FormatInt(channelIDBase-id, 10)
}

// peerCache maps canonical chat IDs to input peers, fed from update
// entities, history responses, and dialog snapshots. Telegram requires the
// access hash captured here to address users and channels.
type peerCache struct {
	mu    sync.Mutex
	peers map[string]tg.InputPeerClass
}

func newPeerCache() *peerCache {
	return &peerCache{peers: make(map[string]tg.InputPeerClass)}
}

// rememberEntities captures every peer referenced by an update batch.
func (c *peerCache) rememberEntities(e tg.Entities) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, u := range e.Users {
		c.peers[strconv.FormatInt(id, 10)] = &tg.InputPeerUser{UserID: id, AccessHash: u.AccessHash}
	}
	for id := range e.Chats {
		c.peers[strconv.FormatInt(-id, 10)] = &tg.InputPeerChat{ChatID: id}
	}
	for id, ch := range e.Channels {
		c.peers[canonicalChannelID(id)] = &tg.InputPeerChannel{ChannelID: id, AccessHash: ch.AccessHash}
	}
}

// rememberUsersChats captures peers from the Users/Chats sections of a
// history or dialogs response.
func (c *peerCache) rememberUsersChats(users []tg.UserClass, chats []tg.ChatClass) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, uc := range users {
		u, ok := uc.(*tg.User)
		if !ok {
			continue
		}
		c.peers[strconv.FormatInt(u.ID, 10)] = &tg.InputPeerUser{UserID: u.ID, AccessHash: u.AccessHash}
	}
	for _, cc := range chats {
		switch ch := cc.(type) {
		case *tg.Chat:
			c.peers[strconv.FormatInt(-ch.ID, 10)] = &tg.InputPeerChat{ChatID: ch.ID}
		case *tg.Channel:
			c.peers[canonicalChannelID(ch.ID)] = &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}
		}
	}
}

// resolve returns the input peer for a canonical chat ID. Small-group IDs
// can be reconstructed without a cache hit; users and channels need the
// access hash previously captured.
func (c *peerCache) resolve(chatID string) (tg.InputPeerClass, error) {
	c.mu.Lock()
	peer, ok := c.peers[chatID]
	c.mu.Unlock()
	if ok {
		return peer, nil
	}

	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("mtproto: bad chat ID %q: %w", chatID, err)
	}
	if id < 0 && id > channelIDBase {
		// Small groups need no access hash.
		return &tg.InputPeerChat{ChatID: -id}, nil
	}
	return nil, fmt.Errorf("mtproto: peer %s not cached yet", chatID)
}
