// Package idgen issues document numbers from snowflake ids.
package idgen

import (
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"

	"github.com/erp/factory/internal/domain/shared"
)

var _ shared.NumberGenerator = (*Snowflake)(nil)

// Snowflake generates numbers such as ORD-1DKVB9X0QE8. The suffix is the
// base36 snowflake id, so numbers from one node sort by creation time.
type Snowflake struct {
	node *snowflake.Node
}

// NewSnowflake creates a generator for node. Each running instance needs its own node id (0..1023).
func NewSnowflake(node int64) (*Snowflake, error) {
	n, err := snowflake.NewNode(node)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", node, err)
	}
	return &Snowflake{node: n}, nil
}

// Next returns a new number with prefix. An empty prefix returns the bare id.
func (s *Snowflake) Next(prefix string) string {
	id := strings.ToUpper(s.node.Generate().Base36())
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}
