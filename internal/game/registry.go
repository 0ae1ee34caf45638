package game

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ourlittlekingdom/asocijacije/internal/domain"
	"github.com/ourlittlekingdom/asocijacije/internal/infrastructure/logging"
)

// Ambiguous characters (0/O, 1/I) are left out of join codes.
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6

	codeGenAttempts = 10
)

// Registry owns the set of live rooms. Rooms missing from memory are
// rehydrated from the durable record; rooms left with no connections
// are garbage collected after a grace period.
type Registry struct {
	mu        sync.Mutex
	rooms     map[string]*Room
	pendingGC map[string]*Delay

	deps     Deps
	emptyTTL time.Duration
}

func NewRegistry(deps Deps, emptyTTL time.Duration) *Registry {
	if emptyTTL <= 0 {
		emptyTTL = 5 * time.Minute
	}
	return &Registry{
		rooms:     make(map[string]*Room),
		pendingGC: make(map[string]*Delay),
		deps:      deps,
		emptyTTL:  emptyTTL,
	}
}

// Create allocates a unique join code, persists the room record and
// places the live room in memory.
func (reg *Registry) Create(ctx context.Context, name, creatorID string) (*Room, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Asocijacije"
	}

	for attempt := 0; attempt < codeGenAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return nil, err
		}

		reg.mu.Lock()
		if _, taken := reg.rooms[code]; taken {
			reg.mu.Unlock()
			continue
		}
		reg.mu.Unlock()

		if reg.deps.Rooms != nil {
			record := &domain.RoomRecord{
				Code:      code,
				Name:      name,
				CreatedBy: creatorID,
				Status:    domain.RoomStatusLobby,
				CreatedAt: time.Now(),
			}
			if err := reg.deps.Rooms.Create(ctx, record); err != nil {
				if errors.Is(err, domain.ErrRoomAlreadyExists) {
					continue
				}
				return nil, err
			}
		}

		room := reg.install(code, name, creatorID)
		if reg.deps.Logger != nil {
			reg.deps.Logger.Info(logging.Game, logging.RoomLifecycle, "room created", map[logging.ExtraKey]any{
				logging.RoomCode: code,
				logging.UserId:   creatorID,
			})
		}
		return room, nil
	}

	return nil, errors.New("could not allocate a unique room code")
}

// Resolve finds a live room by code, rehydrating from the durable
// record when the process no longer holds it. Finished rooms are not
// revived.
func (reg *Registry) Resolve(ctx context.Context, code string) (*Room, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	reg.mu.Lock()
	if room, ok := reg.rooms[code]; ok {
		reg.cancelGCLocked(code)
		reg.mu.Unlock()
		return room, nil
	}
	reg.mu.Unlock()

	if reg.deps.Rooms == nil {
		return nil, domain.ErrRoomNotFound
	}

	record, err := reg.deps.Rooms.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if record.Status == domain.RoomStatusFinished {
		return nil, domain.ErrRoomFinished
	}

	reg.mu.Lock()
	defer reg.mu.Unlock()

	// Another connection may have rehydrated it meanwhile.
	if room, ok := reg.rooms[code]; ok {
		reg.cancelGCLocked(code)
		return room, nil
	}

	room := reg.installLocked(record.Code, record.Name, record.CreatedBy)
	if record.ScheduledStart != nil {
		room.scheduledStart = record.ScheduledStart
	}
	if reg.deps.Logger != nil {
		reg.deps.Logger.Info(logging.Game, logging.RoomLifecycle, "room rehydrated", map[logging.ExtraKey]any{
			logging.RoomCode: code,
		})
	}
	return room, nil
}

// Delete removes a room its creator no longer wants. The durable check
// enforces ownership; the live room, if any, is closed and dropped.
func (reg *Registry) Delete(ctx context.Context, code, userID string) error {
	code = strings.ToUpper(strings.TrimSpace(code))

	if reg.deps.Rooms != nil {
		if err := reg.deps.Rooms.Delete(ctx, code, userID); err != nil {
			return err
		}
		if reg.deps.Participants != nil {
			if err := reg.deps.Participants.RemoveAll(ctx, code); err != nil && reg.deps.Logger != nil {
				reg.deps.Logger.Warn(logging.Game, logging.Persistence, "participant cleanup failed", map[logging.ExtraKey]any{
					logging.RoomCode:     code,
					logging.ErrorMessage: err.Error(),
				})
			}
		}
	}

	reg.mu.Lock()
	room := reg.rooms[code]
	if room != nil {
		delete(reg.rooms, code)
		reg.cancelGCLocked(code)
		if reg.deps.Metrics != nil {
			reg.deps.Metrics.ActiveRooms.Dec()
		}
	}
	reg.mu.Unlock()

	if room != nil {
		room.Close()
	}
	return nil
}

// Peek returns the live room without rehydrating anything.
func (reg *Registry) Peek(code string) (*Room, bool) {
	code = strings.ToUpper(strings.TrimSpace(code))

	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[code]
	return room, ok
}

// ActiveCount reports rooms currently held in memory.
func (reg *Registry) ActiveCount() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.rooms)
}

func (reg *Registry) install(code, name, creatorID string) *Room {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return reg.installLocked(code, name, creatorID)
}

func (reg *Registry) installLocked(code, name, creatorID string) *Room {
	deps := reg.deps
	deps.OnEmpty = reg.scheduleGC

	room := NewRoom(code, name, creatorID, deps)
	reg.rooms[code] = room
	if reg.deps.Metrics != nil {
		reg.deps.Metrics.ActiveRooms.Inc()
	}
	return room
}

// scheduleGC starts the empty-room clock. If anyone connects before it
// fires, Resolve cancels it; the fire itself re-checks occupancy.
func (reg *Registry) scheduleGC(code string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	if _, pending := reg.pendingGC[code]; pending {
		return
	}

	var d *Delay
	d = StartDelay(reg.emptyTTL, func() {
		reg.mu.Lock()
		if reg.pendingGC[code] != d {
			reg.mu.Unlock()
			return
		}
		delete(reg.pendingGC, code)

		room := reg.rooms[code]
		reg.mu.Unlock()

		if room == nil || room.ConnectedCount() > 0 {
			return
		}

		reg.mu.Lock()
		delete(reg.rooms, code)
		if reg.deps.Metrics != nil {
			reg.deps.Metrics.ActiveRooms.Dec()
		}
		reg.mu.Unlock()

		room.Close()
		if reg.deps.Logger != nil {
			reg.deps.Logger.Info(logging.Game, logging.RoomLifecycle, "empty room collected", map[logging.ExtraKey]any{
				logging.RoomCode: code,
			})
		}
	})
	reg.pendingGC[code] = d
}

func (reg *Registry) cancelGCLocked(code string) {
	if d, ok := reg.pendingGC[code]; ok {
		d.Stop()
		delete(reg.pendingGC, code)
	}
}

func generateCode() (string, error) {
	var sb strings.Builder
	max := big.NewInt(int64(len(codeAlphabet)))

	for i := 0; i < codeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(codeAlphabet[n.Int64()])
	}
	return sb.String(), nil
}
