package event

// Dispute claims a prior deposit is contested. Tx references the deposit;
// Client is the disputer and must match the stored deposit's client.
type Dispute struct {
	Client uint16
	Tx     uint32
}

func (d *Dispute) ClientID() uint16 {
	return d.Client
}

func (d *Dispute) TxID() uint32 {
	return d.Tx
}

func (d *Dispute) EventType() EventType {
	return EventTypeDispute
}

// Resolve closes a dispute in the client's favor
type Resolve struct {
	Client uint16
	Tx     uint32
}

func (r *Resolve) ClientID() uint16 {
	return r.Client
}

func (r *Resolve) TxID() uint32 {
	return r.Tx
}

func (r *Resolve) EventType() EventType {
	return EventTypeResolve
}

// Chargeback closes a dispute against the client and freezes the account
type Chargeback struct {
	Client uint16
	Tx     uint32
}

func (c *Chargeback) ClientID() uint16 {
	return c.Client
}

func (c *Chargeback) TxID() uint32 {
	return c.Tx
}

func (c *Chargeback) EventType() EventType {
	return EventTypeChargeback
}
