package sandflow

import (
	"context"
	"sync"
)

// This file declares the multi-server transport boundary (internally
// called Valley in the system this runtime was distilled from) consumed by
// a hypothetical multi-server Exchange, without implementing it — no
// TCP/QUIC server, wire codec, or name-service implementation is provided.
// Grounded on cluster/src/lib.rs, cluster/src/server.rs, and
// cluster/src/name_service/mod.rs.

// ServerID identifies one server in a cluster.
type ServerID uint64

// ChannelID identifies one cross-server exchange channel.
type ChannelID uint64

// Protocol selects the wire transport a Server listens on.
type Protocol int

const (
	ProtocolTCP Protocol = iota
	ProtocolQUIC
)

func (p Protocol) String() string {
	switch p {
	case ProtocolTCP:
		return "tcp"
	case ProtocolQUIC:
		return "quic"
	default:
		return "unknown"
	}
}

// ClusterConfig describes one server's identity within a cluster, mirroring
// cluster/src/lib.rs::ClusterConfig.
type ClusterConfig struct {
	LocalServerID ServerID
	LocalAddr     string
	Protocol      Protocol
	ThreadCount   int
}

// ChannelSender is the send half of a cross-server exchange channel.
type ChannelSender interface {
	Send(ctx context.Context, payload []byte) error
	Close() error
}

// ChannelReceiver is the receive half of a cross-server exchange channel.
type ChannelReceiver interface {
	Recv(ctx context.Context) (payload []byte, ok bool, err error)
}

// Server is the transport boundary a multi-server Exchange would target.
type Server interface {
	ServerID() ServerID
	Address() string
	AllocBiSymmetricChannel(ctx context.Context, channelID ChannelID, peers []ServerID) (ChannelSender, ChannelReceiver, error)
}

// NameService resolves server addresses within a cluster, mirroring
// cluster/src/name_service/mod.rs::NameService.
type NameService interface {
	Register(ctx context.Context, id ServerID, addr string) error
	GetRegistered(ctx context.Context, id ServerID) (addr string, ok bool, err error)
}

var (
	currentServerMu sync.RWMutex
	currentServer   Server
)

// CurrentServer returns the process-wide Server, if one has been installed
// via SetCurrentServer.
func CurrentServer() (Server, bool) {
	currentServerMu.RLock()
	defer currentServerMu.RUnlock()
	return currentServer, currentServer != nil
}

// SetCurrentServer installs the process-wide Server used by a future
// multi-server Exchange implementation.
func SetCurrentServer(s Server) {
	currentServerMu.Lock()
	currentServer = s
	currentServerMu.Unlock()
}
