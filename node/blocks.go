package node

import (
	"io"

	avrokit "github.com/reoring/avrokit"
	"github.com/reoring/avrokit/internal/wire"
)

// writeBlocks emits n items as a block sequence followed by the zero
// terminator. With WriteBlockSize every block is staged in a scratch buffer
// so that its byte size can precede it.
func writeBlocks(out io.Writer, n int, opt avrokit.WriteOpt, item func(w io.Writer, i int) error) error {
	per := opt.BlockCount
	if per <= 0 {
		per = n
	}
	var scratch wire.Buffer
	for start := 0; start < n; start += per {
		end := min(start+per, n)
		count := int64(end - start)
		if !opt.WriteBlockSize {
			if err := wire.WriteLong(out, count); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				if err := item(out, i); err != nil {
					return err
				}
			}
			continue
		}
		scratch.Reset()
		for i := start; i < end; i++ {
			if err := item(&scratch, i); err != nil {
				return err
			}
		}
		if err := wire.WriteLong(out, -count); err != nil {
			return err
		}
		if err := wire.WriteLong(out, int64(scratch.Len())); err != nil {
			return err
		}
		if _, err := out.Write(scratch.Bytes()); err != nil {
			return err
		}
	}
	return wire.WriteLong(out, 0)
}

// readBlockHeader returns the item count of the next block, consuming the
// byte size of a negative header. Zero ends the sequence.
func readBlockHeader(in avrokit.Input) (count int64, size int64, err error) {
	count, err = wire.ReadLong(in)
	if err != nil || count >= 0 {
		return count, -1, err
	}
	if count == -count {
		return 0, 0, avrokit.CorruptErrorf("block count %d out of range", count)
	}
	size, err = wire.ReadLong(in)
	if err != nil {
		return 0, 0, err
	}
	if size < 0 {
		return 0, 0, avrokit.CorruptErrorf("negative block size %d", size)
	}
	return -count, size, nil
}

// MaxItems bounds how many items one array or map may decode to, so that a
// damaged count on zero-width items cannot allocate without limit.
const MaxItems = 1 << 26

// readBlocks calls item once per encoded item, across all blocks.
func readBlocks(in avrokit.Input, item func() error) error {
	var total int64
	for {
		count, _, err := readBlockHeader(in)
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		if count > MaxItems-total {
			return avrokit.CorruptErrorf("container holds more than %d items", MaxItems)
		}
		total += count
		for ; count > 0; count-- {
			if err := item(); err != nil {
				return err
			}
		}
	}
}

// skipBlocks jumps over sized blocks and skips unsized ones item by item.
func skipBlocks(in avrokit.Input, item func() error) error {
	for {
		count, size, err := readBlockHeader(in)
		if err != nil {
			return err
		}
		if count == 0 {
			return nil
		}
		if size >= 0 {
			if err := in.Skip(size); err != nil {
				return err
			}
			continue
		}
		for ; count > 0; count-- {
			if err := item(); err != nil {
				return err
			}
		}
	}
}
