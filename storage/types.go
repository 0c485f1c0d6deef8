package storage

var (
	votePrefix          = []byte("v/")
	commitmentPrefix    = []byte("c/")
	commitmentTxPrefix  = []byte("ct/")
	requestPrefix       = []byte("r/")
	requestReservPrefix = []byte("rr/")
	fulfillmentPrefix   = []byte("f/")
	tallyPrefix         = []byte("t/")
)

// indexLen is the size of the big endian position appended to the proposal
// key of votes and commitments.
const indexLen = 8

type reservation struct {
	Timestamp int64 `cbor:"0,keyasint,omitempty"`
}
