package daemonrpc

import "context"

func (r *RpcClient) GetTransaction(ctx context.Context, p GetTransactionRequest) (*GetTransactionResponse, error) {
	o := &GetTransactionResponse{}
	return o, r.Request(ctx, "get_transaction", p, o)
}

func (r *RpcClient) GetInfo(ctx context.Context, p GetInfoRequest) (*GetInfoResponse, error) {
	o := &GetInfoResponse{}
	return o, r.Request(ctx, "get_info", p, o)
}

func (r *RpcClient) GetAddress(ctx context.Context, p GetAddressRequest) (*GetAddressResponse, error) {
	o := &GetAddressResponse{}
	return o, r.Request(ctx, "get_address", p, o)
}

func (r *RpcClient) SubmitTransaction(ctx context.Context, p SubmitTransactionRequest) (*SubmitTransactionResponse, error) {
	o := &SubmitTransactionResponse{}
	return o, r.Request(ctx, "submit_transaction", p, o)
}

func (r *RpcClient) GetConnections(ctx context.Context, p GetConnectionsRequest) (*GetConnectionsResponse, error) {
	o := &GetConnectionsResponse{}
	return o, r.Request(ctx, "get_connections", p, o)
}

func (r *RpcClient) GetHandle(ctx context.Context, p GetHandleRequest) (*GetHandleResponse, error) {
	o := &GetHandleResponse{}
	return o, r.Request(ctx, "get_handle", p, o)
}

func (r *RpcClient) GetBlockByHeight(ctx context.Context, p GetBlockByHeightRequest) (*GetBlockResponse, error) {
	o := &GetBlockResponse{}
	return o, r.Request(ctx, "get_block_by_height", p, o)
}
