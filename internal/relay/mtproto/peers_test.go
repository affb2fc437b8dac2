package mtproto

import (
	"testing"

	"github.com/gotd/td/tg"
)

func TestCanonicalChatID(t *testing.T) {
	tests := []struct {
		peer tg.PeerClass
		want string
	}{
		{&tg.PeerChannel{ChannelID: 123}, "-1000000000123"},
		{&tg.PeerChannel{ChannelID: 1234567890}, "-1001234567890"},
		{&tg.PeerChat{ChatID: 456}, "-456"},
		{&tg.PeerUser{UserID: 789}, "789"},
	}
	for _, tt := range tests {
		if got := CanonicalChatID(tt.peer); got != tt.want {
			t.Errorf("CanonicalChatID(%T) = %q, want %q", tt.peer, got, tt.want)
		}
	}
}

func TestPeerCache_EntitiesRoundTrip(t *testing.T) {
	cache := newPeerCache()
	cache.rememberEntities(tg.Entities{
		Users:    map[int64]*tg.User{789: {ID: 789, AccessHash: 111}},
		Chats:    map[int64]*tg.Chat{456: {ID: 456}},
		Channels: map[int64]*tg.Channel{123: {ID: 123, AccessHash: 222}},
	})

	peer, err := cache.resolve("789")
	if err != nil {
		t.Fatalf("resolve user: %v", err)
	}
	user, ok := peer.(*tg.InputPeerUser)
	if !ok || user.AccessHash != 111 {
		t.Errorf("user peer = %#v, want access hash preserved", peer)
	}

	peer, err = cache.resolve("-1000000000123")
	if err != nil {
		t.Fatalf("resolve channel: %v", err)
	}
	channel, ok := peer.(*tg.InputPeerChannel)
	if !ok || channel.ChannelID != 123 || channel.AccessHash != 222 {
		t.Errorf("channel peer = %#v", peer)
	}
}

func TestPeerCache_SmallGroupWithoutCache(t *testing.T) {
	cache := newPeerCache()
	peer, err := cache.resolve("-456")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	chat, ok := peer.(*tg.InputPeerChat)
	if !ok || chat.ChatID != 456 {
		t.Errorf("peer = %#v, want InputPeerChat 456", peer)
	}
}

func TestPeerCache_MissAndBadID(t *testing.T) {
	cache := newPeerCache()
	if _, err := cache.resolve("-1000000000999"); err == nil {
		t.Error("uncached channel should fail, access hash is unknown")
	}
	if _, err := cache.resolve("999"); err == nil {
		t.Error("uncached user should fail")
	}
	if _, err := cache.resolve("not-a-number"); err == nil {
		t.Error("malformed ID should fail")
	}
}

func TestPeerCache_HistoryResponseFeedsCache(t *testing.T) {
	cache := newPeerCache()
	cache.rememberUsersChats(
		[]tg.UserClass{&tg.User{ID: 5, AccessHash: 7}},
		[]tg.ChatClass{&tg.Channel{ID: 9, AccessHash: 13}},
	)
	if _, err := cache.resolve("5"); err != nil {
		t.Errorf("user from history should resolve: %v", err)
	}
	if _, err := cache.resolve("-1000000000009"); err != nil {
		t.Errorf("channel from history should resolve: %v", err)
	}
}
