package wire

import "encoding/binary"

// Segment splits events into one or more server→client datagrams, each
// starting with the 4-byte game_id prefix, never exceeding MTU bytes, and
// never fragmenting a single event across datagrams. An empty events slice
// yields no datagrams (an empty drain is a no-op, not an empty datagram).
func Segment(gameID uint32, events []Event) ([][]byte, error) {
	if len(events) == 0 {
		return nil, nil
	}

	var datagrams [][]byte
	var cur []byte

	newDatagram := func() {
		cur = make([]byte, 4)
		binary.BigEndian.PutUint32(cur, gameID)
	}
	newDatagram()

	for _, e := range events {
		rec, err := Marshal(e)
		if err != nil {
			return nil, err
		}
		if len(cur)+len(rec) > MTU && len(cur) > 4 {
			datagrams = append(datagrams, cur)
			newDatagram()
		}
		cur = append(cur, rec...)
	}
	if len(cur) > 4 {
		datagrams = append(datagrams, cur)
	}
	return datagrams, nil
}
