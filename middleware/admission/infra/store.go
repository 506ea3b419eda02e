package infra

import (
	"hash/fnv"
	"sync"
	"time"

	"admission-gateway/middleware/admission/domain"
)

const shardCount = 16

// Store é a implementação em memória do contador de janela fixa, sharded por
// chave para que a seção crítica de cada requisição seja curta e a varredura
// nunca segure o lock de uma requisição em voo por mais que uma remoção.
//
// O estado é por processo: em deploy com múltiplas instâncias cada uma tem o
// seu store e a cota vale por instância, não globalmente.
type Store struct {
	shards     [shardCount]storeShard
	sweepEvery time.Duration
}

type storeShard struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
}

// windowEntry é um registro de janela: contagem e instante de reset.
// Criado na primeira requisição da chave, substituído quando a janela expira,
// removido pela varredura quando ninguém mais o renova.
type windowEntry struct {
	count   int
	resetAt time.Time
}

type StoreOption func(*Store)

func WithSweepEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.sweepEvery = d }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		sweepEvery: 1 * time.Minute,
	}
	for i := range s.shards {
		s.shards[i].entries = make(map[string]*windowEntry)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) SweepEvery() time.Duration { return s.sweepEvery }

func (s *Store) shard(key string) *storeShard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.shards[h.Sum32()%shardCount]
}

// CheckAndIncrement implementa domain.CounterStore.
//
// A passada inteira é uma única seção crítica no shard da chave: duas
// requisições concorrentes da mesma chave nunca observam ambas "primeira da
// janela", e rejeição não incrementa o contador.
func (s *Store) CheckAndIncrement(key domain.Key, now time.Time, window time.Duration, maxRequests int) domain.CounterResult {
	k := string(key)
	sh := s.shard(k)

	sh.mu.Lock()
	defer sh.mu.Unlock()

	ent, ok := sh.entries[k]
	if !ok || !ent.resetAt.After(now) {
		// primeira da janela (ou janela anterior expirada): substitui o registro
		resetAt := now.Add(window)
		sh.entries[k] = &windowEntry{count: 1, resetAt: resetAt}
		return domain.CounterResult{Allowed: true, Remaining: maxRequests - 1, ResetAt: resetAt}
	}

	if ent.count >= maxRequests {
		return domain.CounterResult{Allowed: false, Remaining: 0, ResetAt: ent.resetAt}
	}

	ent.count++
	return domain.CounterResult{Allowed: true, Remaining: maxRequests - ent.count, ResetAt: ent.resetAt}
}

// Sweep remove todo registro com resetAt estritamente antes de now.
//
// A lista de expirados é coletada primeiro e cada remoção reaquire o lock do
// shard, então nenhuma seção crítica dura mais que uma chave — requisições em
// voo nunca esperam a varredura inteira. O recheck cobre a chave que foi
// renovada entre a coleta e a remoção.
func (s *Store) Sweep(now time.Time) {
	for i := range s.shards {
		sh := &s.shards[i]

		sh.mu.Lock()
		var expired []string
		for k, ent := range sh.entries {
			if ent.resetAt.Before(now) {
				expired = append(expired, k)
			}
		}
		sh.mu.Unlock()

		for _, k := range expired {
			sh.mu.Lock()
			if ent, ok := sh.entries[k]; ok && ent.resetAt.Before(now) {
				delete(sh.entries, k)
			}
			sh.mu.Unlock()
		}
	}
}

// Len conta os registros vivos (todas as políticas). Útil em teste e inspeção.
func (s *Store) Len() int {
	total := 0
	for i := range s.shards {
		sh := &s.shards[i]
		sh.mu.Lock()
		total += len(sh.entries)
		sh.mu.Unlock()
	}
	return total
}

// StartJanitor inicia uma goroutine que varre registros expirados periodicamente.
// Pare cancelando o contexto.
func (s *Store) StartJanitor(ctx DoneContext) {
	if s.sweepEvery <= 0 {
		return
	}

	t := time.NewTicker(s.sweepEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				s.Sweep(time.Now())
			}
		}
	}()
}

// DoneContext é o mínimo necessário para aceitar context.Context sem importar context aqui.
// (Permite reuso em libs sem acoplar.)
type DoneContext interface {
	Done() <-chan struct{}
}
