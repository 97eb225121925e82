// internal/game/registry.go
package game

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Default registry limits. Overridable through the options on NewRegistry.
const (
	DefaultMaxRooms = 512
	DefaultIdleTTL  = 10 * time.Minute
)

// Registry owns the set of live rooms: lifecycle, code allocation, the
// connection-to-room index used for action routing, and eviction of rooms
// left empty. Rooms progress concurrently; the registry lock only guards its
// own maps, never a room's state.
type Registry struct {
	mu      sync.Mutex
	rooms   map[string]*Room
	conns   map[uuid.UUID]string             // connection -> room code
	members map[string]map[uuid.UUID]bool    // room code -> subscribed connections
	empty   map[string]time.Time             // room code -> when it last became empty

	maxRooms int
	idleTTL  time.Duration
	newCode  func() string
}

// RegistryOption tweaks a Registry at construction.
type RegistryOption func(*Registry)

// WithMaxRooms sets the room-count ceiling.
func WithMaxRooms(n int) RegistryOption {
	return func(r *Registry) { r.maxRooms = n }
}

// WithIdleTTL sets how long an empty room survives before eviction.
func WithIdleTTL(d time.Duration) RegistryOption {
	return func(r *Registry) { r.idleTTL = d }
}

// WithCodeGenerator replaces the room-code source, mainly for tests.
func WithCodeGenerator(fn func() string) RegistryOption {
	return func(r *Registry) { r.newCode = fn }
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		rooms:    make(map[string]*Room),
		conns:    make(map[uuid.UUID]string),
		members:  make(map[string]map[uuid.UUID]bool),
		empty:    make(map[string]time.Time),
		maxRooms: DefaultMaxRooms,
		idleTTL:  DefaultIdleTTL,
		newCode:  newRoomCode,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// CreateRoom allocates a fresh lobby-phase room under a collision-checked
// code. Returns ErrRoomCapacity at the ceiling.
func (reg *Registry) CreateRoom() (*Room, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if len(reg.rooms) >= reg.maxRooms {
		return nil, ErrRoomCapacity
	}
	var code string
	for {
		code = reg.newCode()
		if _, taken := reg.rooms[code]; !taken {
			break
		}
	}
	room := NewRoom(code)
	reg.rooms[code] = room
	reg.members[code] = make(map[uuid.UUID]bool)
	reg.empty[code] = time.Now()
	log.Printf("Registry: created room %s (%d live)", code, len(reg.rooms))
	return room, nil
}

// Get resolves a room by code. Codes are case-insensitive on input.
func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[normalizeCode(code)]
	return room, ok
}

// Join subscribes a connection to a room and, unless it is the host
// re-attaching, adds it to the roster. Returns ErrRoomNotFound for unknown
// or evicted codes.
func (reg *Registry) Join(code string, connID uuid.UUID, name string, isHost bool) (*Room, error) {
	code = normalizeCode(code)

	reg.mu.Lock()
	room, ok := reg.rooms[code]
	if !ok {
		reg.mu.Unlock()
		return nil, ErrRoomNotFound
	}
	reg.conns[connID] = code
	reg.members[code][connID] = true
	delete(reg.empty, code)
	reg.mu.Unlock()

	if !isHost {
		room.AddPlayer(connID, name)
	}
	return room, nil
}

// Subscribe attaches a connection (typically the creating host) to a room's
// broadcast set without adding a player.
func (reg *Registry) Subscribe(code string, connID uuid.UUID) {
	code = normalizeCode(code)
	reg.mu.Lock()
	defer reg.mu.Unlock()
	if _, ok := reg.rooms[code]; !ok {
		return
	}
	reg.conns[connID] = code
	reg.members[code][connID] = true
	delete(reg.empty, code)
}

// RoomFor resolves the room a connection belongs to. A connection belongs to
// at most one room.
func (reg *Registry) RoomFor(connID uuid.UUID) (*Room, bool) {
	reg.mu.Lock()
	code, ok := reg.conns[connID]
	if !ok {
		reg.mu.Unlock()
		return nil, false
	}
	room, ok := reg.rooms[code]
	reg.mu.Unlock()
	return room, ok
}

// Members returns the connections currently subscribed to a room. Used by
// the transport fan-out.
func (reg *Registry) Members(code string) []uuid.UUID {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	set, ok := reg.members[normalizeCode(code)]
	if !ok {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	return ids
}

// Disconnect unsubscribes a connection and removes its player from the room
// it belonged to, if any. An empty room starts its eviction clock.
func (reg *Registry) Disconnect(connID uuid.UUID) {
	reg.mu.Lock()
	code, ok := reg.conns[connID]
	if !ok {
		reg.mu.Unlock()
		return
	}
	delete(reg.conns, connID)
	if set, ok := reg.members[code]; ok {
		delete(set, connID)
		if len(set) == 0 {
			reg.empty[code] = time.Now()
		}
	}
	room := reg.rooms[code]
	reg.mu.Unlock()

	if room != nil {
		room.HandleDisconnect(connID)
	}
}

// RoomCount reports how many rooms are live.
func (reg *Registry) RoomCount() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

// RunJanitor evicts rooms that have had zero subscribers for longer than the
// idle TTL, keeping the registry bounded when hosts abandon games.
// Blocks until ctx is done.
func (reg *Registry) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reg.EvictIdle(time.Now())
		}
	}
}

// EvictIdle tears down every room whose empty clock passed the TTL.
// Split from RunJanitor so tests can drive it directly.
func (reg *Registry) EvictIdle(now time.Time) {
	reg.mu.Lock()
	var victims []*Room
	for code, since := range reg.empty {
		if now.Sub(since) < reg.idleTTL {
			continue
		}
		if room, ok := reg.rooms[code]; ok {
			victims = append(victims, room)
		}
		delete(reg.rooms, code)
		delete(reg.members, code)
		delete(reg.empty, code)
	}
	reg.mu.Unlock()

	for _, room := range victims {
		room.Teardown()
		log.Printf("Registry: evicted idle room %s", room.Code)
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
