package utilities

import (
	"os"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/segmentio/ksuid"
)

// IDFunc produces a new record identifier. Every identifier fits in a
// VARCHAR(36) primary key column.
type IDFunc func() string

// Identifier schemes accepted by ID_SCHEME.
const (
	SchemeUUID      = "uuid"
	SchemeKSUID     = "ksuid"
	SchemeSnowflake = "snowflake"
)

// NewUUID generates a random (version 4) UUID string.
func NewUUID() string {
	return uuid.NewString()
}

// NewKSUID generates a new globally unique KSUID string.
func NewKSUID() string {
	return ksuid.New().String()
}

// IDFuncFor returns the generator for scheme; unknown schemes get UUIDs.
// The snowflake generator keeps a single node so IDs stay ordered and
// collision-free within the process. A node ID outside the 10-bit range
// falls back to KSUIDs.
func IDFuncFor(scheme string, nodeID int64) IDFunc {
	switch strings.ToLower(strings.TrimSpace(scheme)) {
	case SchemeKSUID:
		return NewKSUID
	case SchemeSnowflake:
		node, err := snowflake.NewNode(nodeID)
		if err != nil {
			return NewKSUID
		}
		return func() string { return node.Generate().String() }
	default:
		return NewUUID
	}
}

// IDFuncFromEnv reads ID_SCHEME and SNOWFLAKE_NODE.
func IDFuncFromEnv() IDFunc {
	return IDFuncFor(os.Getenv("ID_SCHEME"), snowflakeNodeFromEnv())
}

func snowflakeNodeFromEnv() int64 {
	nodeEnv := os.Getenv("SNOWFLAKE_NODE")
	if nodeEnv == "" {
		// default to node 1 when not provided so snowflake IDs are still produced
		return 1
	}
	nodeID, err := strconv.ParseInt(nodeEnv, 10, 64)
	if err != nil {
		return 1
	}
	return nodeID
}
