package apiconnect

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/outlate/pkg/api"
)

// OutingServiceHandler is implemented by the server side of OutingService.
type OutingServiceHandler interface {
	CreateOuting(context.Context, *connect.Request[api.CreateOutingRequest]) (*connect.Response[api.CreateOutingResponse], error)
	GetOuting(context.Context, *connect.Request[api.GetOutingRequest]) (*connect.Response[api.GetOutingResponse], error)
	ListOutings(context.Context, *connect.Request[api.ListOutingsRequest]) (*connect.Response[api.ListOutingsResponse], error)
	AddPerson(context.Context, *connect.Request[api.AddPersonRequest]) (*connect.Response[api.AddPersonResponse], error)
	GetBalances(context.Context, *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error)
	ComputeSettlements(context.Context, *connect.Request[api.ComputeSettlementsRequest]) (*connect.Response[api.ComputeSettlementsResponse], error)
	ListSettlements(context.Context, *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error)
	MarkSettlementPaid(context.Context, *connect.Request[api.MarkSettlementPaidRequest]) (*connect.Response[api.MarkSettlementPaidResponse], error)
	ArchiveOuting(context.Context, *connect.Request[api.ArchiveOutingRequest]) (*connect.Response[api.ArchiveOutingResponse], error)
}

// NewOutingServiceHandler builds an HTTP handler from the service implementation.
func NewOutingServiceHandler(svc OutingServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	mux := http.NewServeMux()
	route(mux, OutingServiceCreateOutingProcedure, svc.CreateOuting, opts)
	route(mux, OutingServiceGetOutingProcedure, svc.GetOuting, opts)
	route(mux, OutingServiceListOutingsProcedure, svc.ListOutings, opts)
	route(mux, OutingServiceAddPersonProcedure, svc.AddPerson, opts)
	route(mux, OutingServiceGetBalancesProcedure, svc.GetBalances, opts)
	route(mux, OutingServiceComputeSettlementsProcedure, svc.ComputeSettlements, opts)
	route(mux, OutingServiceListSettlementsProcedure, svc.ListSettlements, opts)
	route(mux, OutingServiceMarkSettlementPaidProcedure, svc.MarkSettlementPaid, opts)
	route(mux, OutingServiceArchiveOutingProcedure, svc.ArchiveOuting, opts)
	return serviceHandler(OutingServiceName, mux)
}

// OutingServiceClient is a client for OutingService.
type OutingServiceClient interface {
	OutingServiceHandler
}

type outingServiceClient struct {
	createOuting       *connect.Client[api.CreateOutingRequest, api.CreateOutingResponse]
	getOuting          *connect.Client[api.GetOutingRequest, api.GetOutingResponse]
	listOutings        *connect.Client[api.ListOutingsRequest, api.ListOutingsResponse]
	addPerson          *connect.Client[api.AddPersonRequest, api.AddPersonResponse]
	getBalances        *connect.Client[api.GetBalancesRequest, api.GetBalancesResponse]
	computeSettlements *connect.Client[api.ComputeSettlementsRequest, api.ComputeSettlementsResponse]
	listSettlements    *connect.Client[api.ListSettlementsRequest, api.ListSettlementsResponse]
	markSettlementPaid *connect.Client[api.MarkSettlementPaidRequest, api.MarkSettlementPaidResponse]
	archiveOuting      *connect.Client[api.ArchiveOutingRequest, api.ArchiveOutingResponse]
}

// NewOutingServiceClient constructs a client for OutingService.
func NewOutingServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) OutingServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	return &outingServiceClient{
		createOuting:       connect.NewClient[api.CreateOutingRequest, api.CreateOutingResponse](httpClient, baseURL+OutingServiceCreateOutingProcedure, opts...),
		getOuting:          connect.NewClient[api.GetOutingRequest, api.GetOutingResponse](httpClient, baseURL+OutingServiceGetOutingProcedure, opts...),
		listOutings:        connect.NewClient[api.ListOutingsRequest, api.ListOutingsResponse](httpClient, baseURL+OutingServiceListOutingsProcedure, opts...),
		addPerson:          connect.NewClient[api.AddPersonRequest, api.AddPersonResponse](httpClient, baseURL+OutingServiceAddPersonProcedure, opts...),
		getBalances:        connect.NewClient[api.GetBalancesRequest, api.GetBalancesResponse](httpClient, baseURL+OutingServiceGetBalancesProcedure, opts...),
		computeSettlements: connect.NewClient[api.ComputeSettlementsRequest, api.ComputeSettlementsResponse](httpClient, baseURL+OutingServiceComputeSettlementsProcedure, opts...),
		listSettlements:    connect.NewClient[api.ListSettlementsRequest, api.ListSettlementsResponse](httpClient, baseURL+OutingServiceListSettlementsProcedure, opts...),
		markSettlementPaid: connect.NewClient[api.MarkSettlementPaidRequest, api.MarkSettlementPaidResponse](httpClient, baseURL+OutingServiceMarkSettlementPaidProcedure, opts...),
		archiveOuting:      connect.NewClient[api.ArchiveOutingRequest, api.ArchiveOutingResponse](httpClient, baseURL+OutingServiceArchiveOutingProcedure, opts...),
	}
}

func (c *outingServiceClient) CreateOuting(ctx context.Context, req *connect.Request[api.CreateOutingRequest]) (*connect.Response[api.CreateOutingResponse], error) {
	return c.createOuting.CallUnary(ctx, req)
}

func (c *outingServiceClient) GetOuting(ctx context.Context, req *connect.Request[api.GetOutingRequest]) (*connect.Response[api.GetOutingResponse], error) {
	return c.getOuting.CallUnary(ctx, req)
}

func (c *outingServiceClient) ListOutings(ctx context.Context, req *connect.Request[api.ListOutingsRequest]) (*connect.Response[api.ListOutingsResponse], error) {
	return c.listOutings.CallUnary(ctx, req)
}

func (c *outingServiceClient) AddPerson(ctx context.Context, req *connect.Request[api.AddPersonRequest]) (*connect.Response[api.AddPersonResponse], error) {
	return c.addPerson.CallUnary(ctx, req)
}

func (c *outingServiceClient) GetBalances(ctx context.Context, req *connect.Request[api.GetBalancesRequest]) (*connect.Response[api.GetBalancesResponse], error) {
	return c.getBalances.CallUnary(ctx, req)
}

func (c *outingServiceClient) ComputeSettlements(ctx context.Context, req *connect.Request[api.ComputeSettlementsRequest]) (*connect.Response[api.ComputeSettlementsResponse], error) {
	return c.computeSettlements.CallUnary(ctx, req)
}

func (c *outingServiceClient) ListSettlements(ctx context.Context, req *connect.Request[api.ListSettlementsRequest]) (*connect.Response[api.ListSettlementsResponse], error) {
	return c.listSettlements.CallUnary(ctx, req)
}

func (c *outingServiceClient) MarkSettlementPaid(ctx context.Context, req *connect.Request[api.MarkSettlementPaidRequest]) (*connect.Response[api.MarkSettlementPaidResponse], error) {
	return c.markSettlementPaid.CallUnary(ctx, req)
}

func (c *outingServiceClient) ArchiveOuting(ctx context.Context, req *connect.Request[api.ArchiveOutingRequest]) (*connect.Response[api.ArchiveOutingResponse], error) {
	return c.archiveOuting.CallUnary(ctx, req)
}
