package idgen

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	mu   sync.Mutex
)

// Init sets up the snowflake node used for log-style primary keys.
// Calling it again replaces the node.
func Init(nodeID int64) error {
	n, err := snowflake.NewNode(nodeID)
	if err != nil {
		return fmt.Errorf("init snowflake node %d: %w", nodeID, err)
	}

	mu.Lock()
	node = n
	mu.Unlock()
	return nil
}

// GenerateID returns a new snowflake id. Without Init it falls back to node 1.
func GenerateID() int64 {
	mu.Lock()
	if node == nil {
		node, _ = snowflake.NewNode(1)
	}
	n := node
	mu.Unlock()

	return n.Generate().Int64()
}
