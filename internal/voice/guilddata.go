package voice

import "sync"

// GuildData is the per-guild ephemeral record. It is created on first access
// and lives for the process lifetime; nothing in this subsystem evicts it.
type GuildData struct {
	// Queue holds the display metadata kept in lockstep with the
	// guild's playback queue.
	Queue *QueueMetadata
}

// DataStore lazily creates per-guild data under a lock.
type DataStore struct {
	mu     sync.Mutex
	guilds map[string]*GuildData
}

// NewDataStore returns an empty store.
func NewDataStore() *DataStore {
	return &DataStore{guilds: make(map[string]*GuildData)}
}

// Get returns the guild's data, creating a default record if absent.
func (s *DataStore) Get(guildID string) *GuildData {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.guilds[guildID]
	if !ok {
		data = &GuildData{Queue: NewQueueMetadata()}
		s.guilds[guildID] = data
	}
	return data
}
