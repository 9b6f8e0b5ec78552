package dbtypes

// ExplorerState is a generic key/value store for process-wide state
type ExplorerState struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

// Block is a raw ingested beacon block, keyed by slot
type Block struct {
	Slot       uint64 `db:"slot" json:"slot"`
	Epoch      uint64 `db:"epoch" json:"epoch"`
	Root       string `db:"root" json:"root"`
	ParentRoot string `db:"parent_root" json:"parentRoot"`
	StateRoot  string `db:"state_root" json:"stateRoot"`
	Proposer   uint64 `db:"proposer" json:"proposer"`
	Graffiti   string `db:"graffiti" json:"graffiti"`
	Timestamp  int64  `db:"timestamp" json:"timestamp"`
	Processed  bool   `db:"processed" json:"processed"`
}

// Graffiti is a decoded graffiti record, unique per (slot, block_root)
type Graffiti struct {
	Id             uint64 `db:"id" json:"id"`
	Slot           uint64 `db:"slot" json:"slot"`
	Epoch          uint64 `db:"epoch" json:"epoch"`
	BlockNumber    uint64 `db:"block_number" json:"blockNumber"`
	BlockRoot      string `db:"block_root" json:"blockRoot"`
	Proposer       uint64 `db:"proposer" json:"proposer"`
	ProposerPubkey string `db:"proposer_pubkey" json:"proposerPubkey"`
	RawGraffiti    string `db:"raw_graffiti" json:"rawGraffiti"`
	GraffitiText   string `db:"graffiti_text" json:"graffitiText"`
	Timestamp      int64  `db:"timestamp" json:"timestamp"`
}

// Validator holds validator metadata, joined to graffiti by validator index
type Validator struct {
	Index             uint64  `db:"validator_index" json:"index"`
	Pubkey            string  `db:"pubkey" json:"pubkey"`
	WithdrawalAddress string  `db:"withdrawal_address" json:"withdrawalAddress"`
	EffectiveBalance  uint64  `db:"effective_balance" json:"effectiveBalance"`
	Active            bool    `db:"active" json:"active"`
	ActivationEpoch   *uint64 `db:"activation_epoch" json:"activationEpoch"`
	ExitEpoch         *uint64 `db:"exit_epoch" json:"exitEpoch"`
}

// GraffitiCount is a single entry of the graffiti frequency leaderboard
type GraffitiCount struct {
	Graffiti string `db:"graffiti_text" json:"graffiti"`
	Count    uint64 `db:"count" json:"count"`
}
