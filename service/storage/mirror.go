package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RoomMirror writes room membership into Redis so operators can inspect
// presence from outside the process. Two structures per membership:
//
//	collab:room:<room>   SET of connIDs currently in the room
//	collab:conn:<connID> SET of rooms the connection occupies (TTL'd)
//
// The conn index lets a purge find every mirrored room without a scan.
type RoomMirror struct {
	rdb     *redis.Client
	connTTL time.Duration
}

const defaultConnTTL = 24 * time.Hour

func NewRoomMirror(rdb *redis.Client) *RoomMirror {
	return &RoomMirror{rdb: rdb, connTTL: defaultConnTTL}
}

func roomKey(room string) string { return "collab:room:" + room }

func connKey(connID string) string { return "collab:conn:" + connID }

func (m *RoomMirror) MirrorJoin(ctx context.Context, room, connID, userID string) error {
	pipe := m.rdb.TxPipeline()
	pipe.SAdd(ctx, roomKey(room), connID)
	pipe.SAdd(ctx, connKey(connID), room)
	pipe.Expire(ctx, connKey(connID), m.connTTL)
	_, err := pipe.Exec(ctx)
	return err
}

func (m *RoomMirror) MirrorLeave(ctx context.Context, room, connID string) error {
	pipe := m.rdb.TxPipeline()
	pipe.SRem(ctx, roomKey(room), connID)
	pipe.SRem(ctx, connKey(connID), room)
	_, err := pipe.Exec(ctx)
	return err
}

// purgeScript removes the connection from every mirrored room set, then
// drops the conn index, in one round trip.
var purgeScript = redis.NewScript(`
local rooms = redis.call('SMEMBERS', KEYS[1])
for _, room in ipairs(rooms) do
  redis.call('SREM', 'collab:room:' .. room, ARGV[1])
end
redis.call('DEL', KEYS[1])
return #rooms
`)

func (m *RoomMirror) MirrorPurge(ctx context.Context, connID string) error {
	return purgeScript.Run(ctx, m.rdb, []string{connKey(connID)}, connID).Err()
}
