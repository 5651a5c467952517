package rpc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hashicorp/go-plugin"
	"google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

const (
	PluginMapKey      = "player"
	serviceName       = "courseplay.player.v1.Player"
	jsonCodecName     = "json"
	methodGetMetadata = "/" + serviceName + "/GetMetadata"
	methodOpen        = "/" + serviceName + "/Open"
	methodPoll        = "/" + serviceName + "/Poll"
	methodClose       = "/" + serviceName + "/Close"
)

var HandshakeConfig = plugin.HandshakeConfig{
	ProtocolVersion:  1,
	MagicCookieKey:   "COURSEPLAY_PLAYER",
	MagicCookieValue: "courseplay",
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return jsonCodecName
}

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

type Empty struct{}

type Metadata struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Capabilities []string `json:"capabilities"`
}

type OpenRequest struct {
	VideoID       string  `json:"video_id"`
	MediaRef      string  `json:"media_ref"`
	StartPosition float64 `json:"start_position"`
	Duration      float64 `json:"duration"`
}

type OpenResponse struct {
	HandleID string `json:"handle_id"`
}

type PollRequest struct {
	HandleID string `json:"handle_id"`
}

type PollResponse struct {
	Position float64 `json:"position"`
	Percent  float64 `json:"percent"`
	Ended    bool    `json:"ended"`
}

type CloseRequest struct {
	HandleID string `json:"handle_id"`
}

type PlayerServer interface {
	GetMetadata(ctx context.Context, in *Empty) (*Metadata, error)
	Open(ctx context.Context, in *OpenRequest) (*OpenResponse, error)
	Poll(ctx context.Context, in *PollRequest) (*PollResponse, error)
	Close(ctx context.Context, in *CloseRequest) (*Empty, error)
}

type PlayerClient interface {
	GetMetadata(ctx context.Context) (*Metadata, error)
	Open(ctx context.Context, in *OpenRequest) (*OpenResponse, error)
	Poll(ctx context.Context, in *PollRequest) (*PollResponse, error)
	Close(ctx context.Context, in *CloseRequest) error
}

type playerClient struct {
	conn *grpc.ClientConn
}

func NewPlayerClient(conn *grpc.ClientConn) PlayerClient {
	return &playerClient{conn: conn}
}

func (c *playerClient) GetMetadata(ctx context.Context) (*Metadata, error) {
	out := &Metadata{}
	if err := c.conn.Invoke(ctx, methodGetMetadata, &Empty{}, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *playerClient) Open(ctx context.Context, in *OpenRequest) (*OpenResponse, error) {
	out := &OpenResponse{}
	if err := c.conn.Invoke(ctx, methodOpen, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *playerClient) Poll(ctx context.Context, in *PollRequest) (*PollResponse, error) {
	out := &PollResponse{}
	if err := c.conn.Invoke(ctx, methodPoll, in, out, grpc.CallContentSubtype(jsonCodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *playerClient) Close(ctx context.Context, in *CloseRequest) error {
	return c.conn.Invoke(ctx, methodClose, in, &Empty{}, grpc.CallContentSubtype(jsonCodecName))
}

// unary builds a method handler that decodes into a fresh *Req and calls fn,
// going through the server interceptor when one is installed.
func unary[Req any, Resp any](fullMethod string, fn func(context.Context, *Req) (*Resp, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return fn(ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*Req)
			if !ok {
				return nil, fmt.Errorf("invalid request type")
			}
			return fn(ctx, typed)
		}
		return interceptor(ctx, in, info, handler)
	}
}

func RegisterPlayerServer(server grpc.ServiceRegistrar, impl PlayerServer) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: serviceName,
		HandlerType: (*PlayerServer)(nil),
		Methods: []grpc.MethodDesc{
			{MethodName: "GetMetadata", Handler: unary(methodGetMetadata, impl.GetMetadata)},
			{MethodName: "Open", Handler: unary(methodOpen, impl.Open)},
			{MethodName: "Poll", Handler: unary(methodPoll, impl.Poll)},
			{MethodName: "Close", Handler: unary(methodClose, impl.Close)},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "player-rpc-v1",
	}, impl)
}

type GRPCPlugin struct {
	plugin.NetRPCUnsupportedPlugin
	Impl PlayerServer
}

func (p *GRPCPlugin) GRPCServer(_ *plugin.GRPCBroker, server *grpc.Server) error {
	RegisterPlayerServer(server, p.Impl)
	return nil
}

func (p *GRPCPlugin) GRPCClient(_ context.Context, _ *plugin.GRPCBroker, conn *grpc.ClientConn) (any, error) {
	return NewPlayerClient(conn), nil
}

func PluginMap(impl PlayerServer) map[string]plugin.Plugin {
	return map[string]plugin.Plugin{
		PluginMapKey: &GRPCPlugin{Impl: impl},
	}
}
