package marketrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	ServiceName = "marketplace.MarketService"

	// AccountMetadataKey carries the caller address.
	AccountMetadataKey = "x-account"
)

// MarketServiceServer is the server API for MarketService.
type MarketServiceServer interface {
	ListItem(context.Context, *ListItemRequest) (*AckResponse, error)
	CancelListing(context.Context, *ItemRequest) (*AckResponse, error)
	UpdateListing(context.Context, *UpdateListingRequest) (*AckResponse, error)
	BuyItem(context.Context, *BuyItemRequest) (*AckResponse, error)
	WithdrawProceeds(context.Context, *WithdrawProceedsRequest) (*AckResponse, error)
	GetListing(context.Context, *ItemRequest) (*ListingResponse, error)
	GetProceeds(context.Context, *GetProceedsRequest) (*ProceedsResponse, error)
}

// UnimplementedMarketServiceServer can be embedded for forward compatibility.
type UnimplementedMarketServiceServer struct{}

func (UnimplementedMarketServiceServer) ListItem(context.Context, *ListItemRequest) (*AckResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListItem not implemented")
}
func (UnimplementedMarketServiceServer) CancelListing(context.Context, *ItemRequest) (*AckResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CancelListing not implemented")
}
func (UnimplementedMarketServiceServer) UpdateListing(context.Context, *UpdateListingRequest) (*AckResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdateListing not implemented")
}
func (UnimplementedMarketServiceServer) BuyItem(context.Context, *BuyItemRequest) (*AckResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method BuyItem not implemented")
}
func (UnimplementedMarketServiceServer) WithdrawProceeds(context.Context, *WithdrawProceedsRequest) (*AckResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method WithdrawProceeds not implemented")
}
func (UnimplementedMarketServiceServer) GetListing(context.Context, *ItemRequest) (*ListingResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetListing not implemented")
}
func (UnimplementedMarketServiceServer) GetProceeds(context.Context, *GetProceedsRequest) (*ProceedsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetProceeds not implemented")
}

func RegisterMarketServiceServer(s grpc.ServiceRegistrar, srv MarketServiceServer) {
	s.RegisterService(&MarketService_ServiceDesc, srv)
}

// unary builds the method handler the generated code would emit for one RPC.
func unary[Req, Resp any](method string, call func(MarketServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MarketServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + method,
			}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(MarketServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var MarketService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MarketServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListItem", MarketServiceServer.ListItem),
		unary("CancelListing", MarketServiceServer.CancelListing),
		unary("UpdateListing", MarketServiceServer.UpdateListing),
		unary("BuyItem", MarketServiceServer.BuyItem),
		unary("WithdrawProceeds", MarketServiceServer.WithdrawProceeds),
		unary("GetListing", MarketServiceServer.GetListing),
		unary("GetProceeds", MarketServiceServer.GetProceeds),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "marketplace.proto",
}

// MarketServiceClient is the client API for MarketService.
type MarketServiceClient interface {
	ListItem(ctx context.Context, in *ListItemRequest, opts ...grpc.CallOption) (*AckResponse, error)
	CancelListing(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*AckResponse, error)
	UpdateListing(ctx context.Context, in *UpdateListingRequest, opts ...grpc.CallOption) (*AckResponse, error)
	BuyItem(ctx context.Context, in *BuyItemRequest, opts ...grpc.CallOption) (*AckResponse, error)
	WithdrawProceeds(ctx context.Context, in *WithdrawProceedsRequest, opts ...grpc.CallOption) (*AckResponse, error)
	GetListing(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*ListingResponse, error)
	GetProceeds(ctx context.Context, in *GetProceedsRequest, opts ...grpc.CallOption) (*ProceedsResponse, error)
}

type marketServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewMarketServiceClient returns a client that always requests the JSON codec.
func NewMarketServiceClient(cc grpc.ClientConnInterface) MarketServiceClient {
	return &marketServiceClient{cc: cc}
}

func (c *marketServiceClient) invoke(ctx context.Context, method string, in, out any, opts []grpc.CallOption) error {
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	return c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out, opts...)
}

func (c *marketServiceClient) ListItem(ctx context.Context, in *ListItemRequest, opts ...grpc.CallOption) (*AckResponse, error) {
	out := new(AckResponse)
	if err := c.invoke(ctx, "ListItem", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *marketServiceClient) CancelListing(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*AckResponse, error) {
	out := new(AckResponse)
	if err := c.invoke(ctx, "CancelListing", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *marketServiceClient) UpdateListing(ctx context.Context, in *UpdateListingRequest, opts ...grpc.CallOption) (*AckResponse, error) {
	out := new(AckResponse)
	if err := c.invoke(ctx, "UpdateListing", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *marketServiceClient) BuyItem(ctx context.Context, in *BuyItemRequest, opts ...grpc.CallOption) (*AckResponse, error) {
	out := new(AckResponse)
	if err := c.invoke(ctx, "BuyItem", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *marketServiceClient) WithdrawProceeds(ctx context.Context, in *WithdrawProceedsRequest, opts ...grpc.CallOption) (*AckResponse, error) {
	out := new(AckResponse)
	if err := c.invoke(ctx, "WithdrawProceeds", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *marketServiceClient) GetListing(ctx context.Context, in *ItemRequest, opts ...grpc.CallOption) (*ListingResponse, error) {
	out := new(ListingResponse)
	if err := c.invoke(ctx, "GetListing", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *marketServiceClient) GetProceeds(ctx context.Context, in *GetProceedsRequest, opts ...grpc.CallOption) (*ProceedsResponse, error) {
	out := new(ProceedsResponse)
	if err := c.invoke(ctx, "GetProceeds", in, out, opts); err != nil {
		return nil, err
	}
	return out, nil
}
