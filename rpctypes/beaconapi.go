package rpctypes

type BeaconBlockHeader struct {
	Slot          Uint64Str   `json:"slot"`
	ProposerIndex Uint64Str   `json:"proposer_index"`
	ParentRoot    BytesHexStr `json:"parent_root"`
	StateRoot     BytesHexStr `json:"state_root"`
	BodyRoot      BytesHexStr `json:"body_root"`
}

type SignedBeaconBlockHeader struct {
	Message   BeaconBlockHeader `json:"message"`
	Signature BytesHexStr       `json:"signature"`
}

type StandardV1BeaconHeaderResponse struct {
	Finalized bool `json:"finalized"`
	Data      struct {
		Root      BytesHexStr             `json:"root"`
		Canonical bool                    `json:"canonical"`
		Header    SignedBeaconBlockHeader `json:"header"`
	} `json:"data"`
}

type BeaconBlockBody struct {
	Graffiti BytesHexStr `json:"graffiti"`
}

type BeaconBlock struct {
	Slot          Uint64Str       `json:"slot"`
	ProposerIndex Uint64Str       `json:"proposer_index"`
	ParentRoot    BytesHexStr     `json:"parent_root"`
	StateRoot     BytesHexStr     `json:"state_root"`
	Body          BeaconBlockBody `json:"body"`
}

type SignedBeaconBlock struct {
	Message   BeaconBlock `json:"message"`
	Signature BytesHexStr `json:"signature"`
}

type StandardV2BeaconBlockResponse struct {
	Finalized bool              `json:"finalized"`
	Data      SignedBeaconBlock `json:"data"`
}

type StandardV1FinalityCheckpointsResponse struct {
	Data struct {
		PreviousJustified struct {
			Epoch Uint64Str   `json:"epoch"`
			Root  BytesHexStr `json:"root"`
		} `json:"previous_justified"`
		CurrentJustified struct {
			Epoch Uint64Str   `json:"epoch"`
			Root  BytesHexStr `json:"root"`
		} `json:"current_justified"`
		Finalized struct {
			Epoch Uint64Str   `json:"epoch"`
			Root  BytesHexStr `json:"root"`
		} `json:"finalized"`
	} `json:"data"`
}

type ValidatorEntry struct {
	Index   Uint64Str `json:"index"`
	Balance Uint64Str `json:"balance"`
	Status  string    `json:"status"`
	Validator struct {
		Pubkey                BytesHexStr `json:"pubkey"`
		WithdrawalCredentials BytesHexStr `json:"withdrawal_credentials"`
		EffectiveBalance      Uint64Str   `json:"effective_balance"`
		Slashed               bool        `json:"slashed"`
		ActivationEpoch       Uint64Str   `json:"activation_epoch"`
		ExitEpoch             Uint64Str   `json:"exit_epoch"`
	} `json:"validator"`
}

type StandardV1StateValidatorResponse struct {
	Data ValidatorEntry `json:"data"`
}
