package grpcserver

// Request/response messages for the order API. The service is registered
// with an explicit descriptor and a JSON codec, so these are plain
// structs; the generated-stub layer the usual proto toolchain would emit
// is not part of this repository.

type PlaceLimitRequest struct {
	Side  string `json:"side"`
	Price int64  `json:"price"`
	Qty   int64  `json:"qty"`
	ID    uint64 `json:"id"`
}

type PlaceLimitResponse struct {
	Seq uint64 `json:"seq"`
	ID  uint64 `json:"id"`
}

type CancelRequest struct {
	ID uint64 `json:"id"`
}

type CancelResponse struct {
	Seq      uint64 `json:"seq"`
	Residual int64  `json:"residual"`
}

type ExecuteMarketRequest struct {
	Side string `json:"side"`
	Qty  int64  `json:"qty"`
}

type Fill struct {
	MakerID uint64 `json:"maker_id"`
	Price   int64  `json:"price"`
	Qty     int64  `json:"qty"`
}

type ExecuteMarketResponse struct {
	Seq      uint64 `json:"seq"`
	Fills    []Fill `json:"fills"`
	Residual int64  `json:"residual"`
}

type BestRequest struct {
	Side string `json:"side"`
}

type BestResponse struct {
	Price int64 `json:"price"`
	Qty   int64 `json:"qty"`
	Found bool  `json:"found"`
}

type DepthRequest struct {
	Side   string `json:"side"`
	Levels int    `json:"levels"`
}

type DepthLevel struct {
	Price int64 `json:"price"`
	Qty   int64 `json:"qty"`
}

type DepthResponse struct {
	Levels []DepthLevel `json:"levels"`
}
