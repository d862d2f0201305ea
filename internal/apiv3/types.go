package apiv3

// Response is the success envelope shared by every endpoint.
type Response[T any] struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
}

// PoolsPage is a page of pools from /pools/info/mint and /pools/info/list.
type PoolsPage struct {
	Count       int        `json:"count"`
	HasNextPage bool       `json:"hasNextPage"`
	Data        []PoolInfo `json:"data"`
}

// Token is a mint entry as returned by /mint/ids and embedded in pools.
type Token struct {
	ChainID   uint64   `json:"chainId"`
	Address   string   `json:"address"`
	ProgramID string   `json:"programId"`
	LogoURI   string   `json:"logoURI"`
	Symbol    string   `json:"symbol"`
	Name      string   `json:"name"`
	Decimals  uint8    `json:"decimals"`
	Tags      []string `json:"tags"`
}

// PoolInfo is the listing view of a pool.
type PoolInfo struct {
	Type        string   `json:"type"`
	ProgramID   string   `json:"programId"`
	ID          string   `json:"id"`
	MintA       Token    `json:"mintA"`
	MintB       Token    `json:"mintB"`
	Price       float64  `json:"price"`
	MintAmountA float64  `json:"mintAmountA"`
	MintAmountB float64  `json:"mintAmountB"`
	FeeRate     float64  `json:"feeRate"`
	OpenTime    string   `json:"openTime"`
	TVL         float64  `json:"tvl"`
	PoolType    []string `json:"pooltype"`
	MarketID    string   `json:"marketId,omitempty"`
	LpAmount    float64  `json:"lpAmount,omitempty"`
}

// VaultKeys are the pool's two reserve vaults.
type VaultKeys struct {
	A string `json:"A"`
	B string `json:"B"`
}

// PoolKeys is the /pools/key/ids view of a standard (AMM v4) pool.
// Market fields are empty for pools without an orderbook market.
type PoolKeys struct {
	ProgramID          string    `json:"programId"`
	ID                 string    `json:"id"`
	MintA              Token     `json:"mintA"`
	MintB              Token     `json:"mintB"`
	LookupTableAccount string    `json:"lookupTableAccount,omitempty"`
	OpenTime           string    `json:"openTime"`
	Vault              VaultKeys `json:"vault"`
	Authority          string    `json:"authority"`
	MintLp             Token     `json:"mintLp"`
	OpenOrders         string    `json:"openOrders,omitempty"`
	TargetOrders       string    `json:"targetOrders,omitempty"`
	MarketProgramID    string    `json:"marketProgramId,omitempty"`
	MarketID           string    `json:"marketId,omitempty"`
	MarketAuthority    string    `json:"marketAuthority,omitempty"`
	MarketBaseVault    string    `json:"marketBaseVault,omitempty"`
	MarketQuoteVault   string    `json:"marketQuoteVault,omitempty"`
	MarketBids         string    `json:"marketBids,omitempty"`
	MarketAsks         string    `json:"marketAsks,omitempty"`
	MarketEventQueue   string    `json:"marketEventQueue,omitempty"`
}

// PoolQuery selects pools by mint with sorting and paging.
type PoolQuery struct {
	Mint1     string
	Mint2     string
	PoolType  string // all | standard | concentrated
	SortField string // liquidity | volume24h | ...
	SortType  string // asc | desc
	PageSize  int
	Page      int
}
