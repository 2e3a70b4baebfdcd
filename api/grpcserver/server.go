package grpcserver

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"bulkbook/domain/book"
	"bulkbook/service"
)

// Server implements the order API over the single-writer service.
type Server struct {
	svc *service.OrderService
	log *slog.Logger
}

func NewServer(svc *service.OrderService, log *slog.Logger) *Server {
	return &Server{svc: svc, log: log}
}

func (s *Server) PlaceLimit(ctx context.Context, req *PlaceLimitRequest) (*PlaceLimitResponse, error) {
	side, err := parseSide(req.Side)
	if err != nil {
		return nil, err
	}

	seq, err := s.svc.PlaceLimit(side, req.Price, req.Qty, req.ID)
	if err != nil {
		return nil, toStatus(err)
	}

	s.log.Debug("limit placed", "id", req.ID, "side", req.Side, "price", req.Price, "qty", req.Qty)
	return &PlaceLimitResponse{Seq: seq, ID: req.ID}, nil
}

func (s *Server) Cancel(ctx context.Context, req *CancelRequest) (*CancelResponse, error) {
	seq, residual, err := s.svc.Cancel(req.ID)
	if err != nil {
		return nil, toStatus(err)
	}

	s.log.Debug("order cancelled", "id", req.ID, "residual", residual)
	return &CancelResponse{Seq: seq, Residual: residual}, nil
}

func (s *Server) ExecuteMarket(ctx context.Context, req *ExecuteMarketRequest) (*ExecuteMarketResponse, error) {
	side, err := parseSide(req.Side)
	if err != nil {
		return nil, err
	}

	seq, fills, residual, err := s.svc.ExecuteMarket(side, req.Qty)
	if err != nil {
		return nil, toStatus(err)
	}

	resp := &ExecuteMarketResponse{Seq: seq, Residual: residual, Fills: make([]Fill, len(fills))}
	for i, f := range fills {
		resp.Fills[i] = Fill{MakerID: f.MakerID, Price: f.Price, Qty: f.Qty}
	}
	return resp, nil
}

func (s *Server) Best(ctx context.Context, req *BestRequest) (*BestResponse, error) {
	side, err := parseSide(req.Side)
	if err != nil {
		return nil, err
	}

	var price, qty int64
	var ok bool
	if side == book.Bid {
		price, qty, ok = s.svc.BestBid()
	} else {
		price, qty, ok = s.svc.BestAsk()
	}
	return &BestResponse{Price: price, Qty: qty, Found: ok}, nil
}

func (s *Server) Depth(ctx context.Context, req *DepthRequest) (*DepthResponse, error) {
	side, err := parseSide(req.Side)
	if err != nil {
		return nil, err
	}

	quotes := s.svc.Depth(side, req.Levels)
	resp := &DepthResponse{Levels: make([]DepthLevel, len(quotes))}
	for i, q := range quotes {
		resp.Levels[i] = DepthLevel{Price: q.Price, Qty: q.Qty}
	}
	return resp, nil
}

func parseSide(s string) (book.Side, error) {
	switch s {
	case "bid":
		return book.Bid, nil
	case "ask":
		return book.Ask, nil
	default:
		return 0, status.Errorf(codes.InvalidArgument, "side must be bid or ask, got %q", s)
	}
}

func toStatus(err error) error {
	switch {
	case errors.Is(err, book.ErrDuplicateOrderID):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, book.ErrUnknownOrderID):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, book.ErrInvalidPrice),
		errors.Is(err, book.ErrInvalidQuantity),
		errors.Is(err, book.ErrInvalidOrderID):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
