package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/outlate/pkg/api"
)

// ReceiptServiceHandler is implemented by the server side of ReceiptService.
type ReceiptServiceHandler interface {
	AddReceipt(context.Context, *connect.Request[api.AddReceiptRequest]) (*connect.Response[api.AddReceiptResponse], error)
	UpdateReceipt(context.Context, *connect.Request[api.UpdateReceiptRequest]) (*connect.Response[api.UpdateReceiptResponse], error)
	DeleteReceipt(context.Context, *connect.Request[api.DeleteReceiptRequest]) (*connect.Response[api.DeleteReceiptResponse], error)
	GetAllocations(context.Context, *connect.Request[api.GetAllocationsRequest]) (*connect.Response[api.GetAllocationsResponse], error)
	ScanReceipt(context.Context, *connect.Request[api.ScanReceiptRequest]) (*connect.Response[api.ScanReceiptResponse], error)
}

// NewReceiptServiceHandler builds an HTTP handler from the service implementation.
func NewReceiptServiceHandler(svc ReceiptServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	route(mux, ReceiptServiceAddReceiptProcedure, svc.AddReceipt, opts)
	route(mux, ReceiptServiceUpdateReceiptProcedure, svc.UpdateReceipt, opts)
	route(mux, ReceiptServiceDeleteReceiptProcedure, svc.DeleteReceipt, opts)
	route(mux, ReceiptServiceGetAllocationsProcedure, svc.GetAllocations, opts)
	route(mux, ReceiptServiceScanReceiptProcedure, svc.ScanReceipt, opts)
	return serviceHandler(ReceiptServiceName, mux)
}

// ReceiptServiceClient is a client for ReceiptService.
type ReceiptServiceClient interface {
	ReceiptServiceHandler
}

type receiptServiceClient struct {
	addReceipt     *connect.Client[api.AddReceiptRequest, api.AddReceiptResponse]
	updateReceipt  *connect.Client[api.UpdateReceiptRequest, api.UpdateReceiptResponse]
	deleteReceipt  *connect.Client[api.DeleteReceiptRequest, api.DeleteReceiptResponse]
	getAllocations *connect.Client[api.GetAllocationsRequest, api.GetAllocationsResponse]
	scanReceipt    *connect.Client[api.ScanReceiptRequest, api.ScanReceiptResponse]
}

// NewReceiptServiceClient constructs a client for ReceiptService.
func NewReceiptServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) ReceiptServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	return &receiptServiceClient{
		addReceipt:     connect.NewClient[api.AddReceiptRequest, api.AddReceiptResponse](httpClient, baseURL+ReceiptServiceAddReceiptProcedure, opts...),
		updateReceipt:  connect.NewClient[api.UpdateReceiptRequest, api.UpdateReceiptResponse](httpClient, baseURL+ReceiptServiceUpdateReceiptProcedure, opts...),
		deleteReceipt:  connect.NewClient[api.DeleteReceiptRequest, api.DeleteReceiptResponse](httpClient, baseURL+ReceiptServiceDeleteReceiptProcedure, opts...),
		getAllocations: connect.NewClient[api.GetAllocationsRequest, api.GetAllocationsResponse](httpClient, baseURL+ReceiptServiceGetAllocationsProcedure, opts...),
		scanReceipt:    connect.NewClient[api.ScanReceiptRequest, api.ScanReceiptResponse](httpClient, baseURL+ReceiptServiceScanReceiptProcedure, opts...),
	}
}

func (c *receiptServiceClient) AddReceipt(ctx context.Context, req *connect.Request[api.AddReceiptRequest]) (*connect.Response[api.AddReceiptResponse], error) {
	return c.addReceipt.CallUnary(ctx, req)
}

func (c *receiptServiceClient) UpdateReceipt(ctx context.Context, req *connect.Request[api.UpdateReceiptRequest]) (*connect.Response[api.UpdateReceiptResponse], error) {
	return c.updateReceipt.CallUnary(ctx, req)
}

func (c *receiptServiceClient) DeleteReceipt(ctx context.Context, req *connect.Request[api.DeleteReceiptRequest]) (*connect.Response[api.DeleteReceiptResponse], error) {
	return c.deleteReceipt.CallUnary(ctx, req)
}

func (c *receiptServiceClient) GetAllocations(ctx context.Context, req *connect.Request[api.GetAllocationsRequest]) (*connect.Response[api.GetAllocationsResponse], error) {
	return c.getAllocations.CallUnary(ctx, req)
}

func (c *receiptServiceClient) ScanReceipt(ctx context.Context, req *connect.Request[api.ScanReceiptRequest]) (*connect.Response[api.ScanReceiptResponse], error) {
	return c.scanReceipt.CallUnary(ctx, req)
}
