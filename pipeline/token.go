package pipeline

import (
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	ecs "github.com/dangerosodavo/ecscore"
)

// WorldToken is the preparation handle a Plan acquires for a World the first
// time the two are paired. It carries no long-lived state of its own beyond
// identifying the pairing; Executors built against the same Plan/World reuse
// it instead of re-running first-touch preparation on every construction.
type WorldToken struct {
	PlanID  string
	WorldID string
}

func (t *WorldToken) String() string {
	if t == nil {
		return ""
	}
	return t.PlanID + "/" + t.WorldID
}

// tokenCache deduplicates concurrent first-pairing preparation for the same
// (world, plan) pair behind a singleflight.Group, so two goroutines building
// an Executor against the same pairing at the same moment only prepare once.
type tokenCache struct {
	group singleflight.Group

	mu     sync.Mutex
	tokens map[string]*WorldToken
}

var globalTokens = &tokenCache{tokens: make(map[string]*WorldToken)}

func pairingKey(world *ecs.World, plan *Plan) string {
	return fmt.Sprintf("%p:%p", world, plan)
}

// acquire returns the WorldToken for a (world, plan) pairing, running
// prepare exactly once across all concurrent callers the first time the
// pairing is seen. prepare may be nil.
func (c *tokenCache) acquire(world *ecs.World, plan *Plan, prepare func() error) (*WorldToken, error) {
	key := pairingKey(world, plan)

	c.mu.Lock()
	if tok, ok := c.tokens[key]; ok {
		c.mu.Unlock()
		return tok, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		c.mu.Lock()
		if tok, ok := c.tokens[key]; ok {
			c.mu.Unlock()
			return tok, nil
		}
		c.mu.Unlock()

		if prepare != nil {
			if err := prepare(); err != nil {
				return nil, err
			}
		}

		tok := &WorldToken{PlanID: fmt.Sprintf("plan-%p", plan), WorldID: fmt.Sprintf("world-%p", world)}
		c.mu.Lock()
		c.tokens[key] = tok
		c.mu.Unlock()
		return tok, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*WorldToken), nil
}
