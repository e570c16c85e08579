package capture

import (
	"bytes"
	"testing"
)

func TestReadAccumulatorLengths(t *testing.T) {
	tests := []struct {
		name      string
		length    int
		wantReads []accRead
	}{
		{
			name:      "shorter than one chunk",
			length:    10,
			wantReads: []accRead{{n: 10, offset: 0}},
		},
		{
			name:      "exactly one chunk",
			length:    accChunkSize,
			wantReads: []accRead{{n: 64, offset: 0}},
		},
		{
			name:   "exact multiple of chunk size",
			length: 3 * accChunkSize,
			wantReads: []accRead{
				{n: 64, offset: 0},
				{n: 64, offset: 64},
				{n: 64, offset: 128},
			},
		},
		{
			name:   "multiple chunks with remainder",
			length: 2*accChunkSize + 17,
			wantReads: []accRead{
				{n: 64, offset: 0},
				{n: 64, offset: 64},
				{n: 17, offset: 128},
			},
		},
		{
			name:   "full 64MHz PRF accumulator",
			length: 4 * 1016,
			wantReads: func() []accRead {
				var reads []accRead
				for off := 0; off < 4*1016-accChunkSize; off += accChunkSize {
					reads = append(reads, accRead{n: accChunkSize, offset: off})
				}
				return append(reads, accRead{n: 4 * 1016 % accChunkSize, offset: 4 * 1016 / accChunkSize * accChunkSize})
			}(),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dev := newFakeDevice()
			dst := make([]byte, tc.length)
			if err := readAccumulator(dev, dst, 0); err != nil {
				t.Fatalf("readAccumulator: %v", err)
			}

			if !bytes.Equal(dst, dev.acc[:tc.length]) {
				t.Errorf("destination does not match accumulator memory")
			}
			for i, b := range dst {
				if b == 0xA5 && dev.acc[i] != 0xA5 {
					t.Errorf("dummy byte leaked into destination at offset %d", i)
				}
			}

			if len(dev.accReads) != len(tc.wantReads) {
				t.Fatalf("got %d device reads, want %d: %v", len(dev.accReads), len(tc.wantReads), dev.accReads)
			}
			for i, want := range tc.wantReads {
				if dev.accReads[i] != want {
					t.Errorf("read %d: got %+v, want %+v", i, dev.accReads[i], want)
				}
			}
		})
	}
}

func TestReadAccumulatorOffset(t *testing.T) {
	dev := newFakeDevice()
	dst := make([]byte, 100)
	if err := readAccumulator(dev, dst, 256); err != nil {
		t.Fatalf("readAccumulator: %v", err)
	}
	if !bytes.Equal(dst, dev.acc[256:356]) {
		t.Errorf("destination does not match accumulator memory at offset")
	}
	want := []accRead{{n: 64, offset: 256}, {n: 36, offset: 320}}
	for i, w := range want {
		if dev.accReads[i] != w {
			t.Errorf("read %d: got %+v, want %+v", i, dev.accReads[i], w)
		}
	}
}

func TestReadAccumulatorDeviceFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.accFailAt = 2
	dst := make([]byte, 3*accChunkSize)
	if err := readAccumulator(dev, dst, 0); err == nil {
		t.Fatal("expected error when a chunk read fails")
	}
	if len(dev.accReads) != 2 {
		t.Errorf("transfer should abort at the failing chunk, got %d reads", len(dev.accReads))
	}
}
