// Package apiconnect wires the api messages to Connect handlers and clients,
// one unary procedure per method. Handlers and clients must be built with the
// JSON codec (see rpc.HandlerOptions and rpc.ClientOptions).
package apiconnect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	AuthServiceName    = "outlate.v1.AuthService"
	OutingServiceName  = "outlate.v1.OutingService"
	ReceiptServiceName = "outlate.v1.ReceiptService"
)

// Procedure names, as they appear in request paths and interceptor specs.
const (
	AuthServiceRegisterProcedure       = "/" + AuthServiceName + "/Register"
	AuthServiceLoginProcedure          = "/" + AuthServiceName + "/Login"
	AuthServiceGetCurrentUserProcedure = "/" + AuthServiceName + "/GetCurrentUser"

	OutingServiceCreateOutingProcedure       = "/" + OutingServiceName + "/CreateOuting"
	OutingServiceGetOutingProcedure          = "/" + OutingServiceName + "/GetOuting"
	OutingServiceListOutingsProcedure        = "/" + OutingServiceName + "/ListOutings"
	OutingServiceAddPersonProcedure          = "/" + OutingServiceName + "/AddPerson"
	OutingServiceGetBalancesProcedure        = "/" + OutingServiceName + "/GetBalances"
	OutingServiceComputeSettlementsProcedure = "/" + OutingServiceName + "/ComputeSettlements"
	OutingServiceListSettlementsProcedure    = "/" + OutingServiceName + "/ListSettlements"
	OutingServiceMarkSettlementPaidProcedure = "/" + OutingServiceName + "/MarkSettlementPaid"
	OutingServiceArchiveOutingProcedure      = "/" + OutingServiceName + "/ArchiveOuting"

	ReceiptServiceAddReceiptProcedure     = "/" + ReceiptServiceName + "/AddReceipt"
	ReceiptServiceUpdateReceiptProcedure  = "/" + ReceiptServiceName + "/UpdateReceipt"
	ReceiptServiceDeleteReceiptProcedure  = "/" + ReceiptServiceName + "/DeleteReceipt"
	ReceiptServiceGetAllocationsProcedure = "/" + ReceiptServiceName + "/GetAllocations"
	ReceiptServiceScanReceiptProcedure    = "/" + ReceiptServiceName + "/ScanReceipt"
)

// PublicProcedures need no bearer token.
var PublicProcedures = []string{
	AuthServiceRegisterProcedure,
	AuthServiceLoginProcedure,
}

// route registers one unary procedure on mux.
func route[Req, Res any](mux *http.ServeMux, procedure string, fn func(context.Context, *connect.Request[Req]) (*connect.Response[Res], error), opts []connect.HandlerOption) {
	mux.Handle(procedure, connect.NewUnaryHandler(procedure, fn, opts...))
}

// serviceHandler returns the path prefix for service and a handler that
// answers 404 for anything it does not know.
func serviceHandler(service string, mux *http.ServeMux) (string, http.Handler) {
	return "/" + service + "/", mux
}
