package ring

// WriteTransaction lets a writer reserve, fill, and publish a write in
// separate steps, without the ring's write position advancing until
// CommitWrite runs — useful when a payload is assembled by several
// AmendWrite calls (for example a header followed by a body) before
// becoming visible to the reader all at once.
type WriteTransaction struct {
	readHead  uint32
	writeHead uint32
}

// BeginWrite opens a transaction positioned at the ring's current read
// and write heads. The reader's head is read once up front (a snapshot);
// the writer's own head needs no atomic load here since only the writer
// ever changes it.
func (r *Ring) BeginWrite() WriteTransaction {
	return WriteTransaction{
		readHead:  r.readHead.Load(),
		writeHead: r.writeHead.Load(),
	}
}

// AmendWrite appends src to the transaction's pending write, failing with
// StatusNoSpace (and leaving tx and the ring untouched) if the space the
// transaction already holds plus src exceeds what BeginWrite reserved.
// It writes directly into the ring's buffer but does not move the ring's
// published write head; only CommitWrite does that.
func (r *Ring) AmendWrite(tx *WriteTransaction, src []byte) Status {
	size := uint32(len(src))
	if writeSpace(r, tx.readHead, tx.writeHead) < size {
		return StatusNoSpace
	}

	end := tx.writeHead + size
	if end <= r.size {
		copy(r.buf[tx.writeHead:end], src)
		tx.writeHead = end & r.sizeMask
	} else {
		firstSize := r.size - tx.writeHead
		copy(r.buf[tx.writeHead:], src[:firstSize])
		copy(r.buf[:size-firstSize], src[firstSize:])
		tx.writeHead = size - firstSize
	}
	return StatusSuccess
}

// CommitWrite publishes everything amended onto tx, making it visible to
// the reader.
func (r *Ring) CommitWrite(tx *WriteTransaction) {
	r.writeHead.Store(tx.writeHead)
}

// Write appends src to the ring in one step, equivalent to
// BeginWrite/AmendWrite/CommitWrite. It returns 0 without writing
// anything if src does not fit in the ring's current write space.
func (r *Ring) Write(src []byte) uint32 {
	tx := r.BeginWrite()
	if r.AmendWrite(&tx, src) != StatusSuccess {
		return 0
	}
	r.CommitWrite(&tx)
	return uint32(len(src))
}
