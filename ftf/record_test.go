package ftf

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// readAll decodes every record in buf.
func readAll(t *testing.T, buf *bytes.Buffer) []Record {
	t.Helper()
	var records []Record
	r := NewReader(buf)
	for {
		rec, err := r.Next()
		if err == io.EOF {
			return records
		}
		require.NoError(t, err)
		records = append(records, rec)
	}
}

func TestMagicRecordBytes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewMagicRecord().Write(&buf))

	require.Equal(t, WordSize, buf.Len())
	assert.Equal(t, uint64(MagicWord), binary.LittleEndian.Uint64(buf.Bytes()))
}

func TestProviderInfoRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rec := NewProviderInfoRecord(7, "my-provider")
	require.NoError(t, rec.Write(&buf))

	records := readAll(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, ProviderInfoRecord{ID: 7, Name: "my-provider"}, records[0])
}

func TestStringRecordRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewStringRecord(3, "hello").Write(&buf))
	// A value that is an exact word multiple exercises the no-padding path.
	require.NoError(t, NewStringRecord(4, "12345678").Write(&buf))

	records := readAll(t, &buf)
	require.Len(t, records, 2)
	assert.Equal(t, StringRecord{Index: 3, Value: "hello"}, records[0])
	assert.Equal(t, StringRecord{Index: 4, Value: "12345678"}, records[1])
}

func TestThreadRecordRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewThreadRecord(9, 1234, 5678).Write(&buf))

	records := readAll(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, ThreadRecord{Index: 9, Process: 1234, Thread: 5678}, records[0])
}

func TestEventRecordRoundTrip(t *testing.T) {
	args := []Argument{
		StringArg(StringIndexRef(10), StringIndexRef(11)),
		StringArg(InlineStringRef("key"), InlineStringRef("value")),
		Int64Arg(StringIndexRef(12), -42),
		Uint64Arg(StringIndexRef(13), 42),
		BoolArg(StringIndexRef(14), true),
		Float64Arg(StringIndexRef(15), 2.5),
	}
	rec := NewInstantRecord(987654321, ThreadIndexRef(2), StringIndexRef(5), StringIndexRef(6), args)

	var buf bytes.Buffer
	require.NoError(t, rec.Write(&buf))

	records := readAll(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, rec, records[0])
}

func TestEventRecordInlineRefs(t *testing.T) {
	rec := NewDurationBeginRecord(
		100,
		InlineThreadRef(111, 222),
		InlineStringRef("category"),
		InlineStringRef("name"),
		nil,
	)

	var buf bytes.Buffer
	require.NoError(t, rec.Write(&buf))

	records := readAll(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, rec, records[0])
}

func TestDurationEndCarriesNoArgs(t *testing.T) {
	rec := NewDurationEndRecord(100, ThreadIndexRef(1), StringIndexRef(2), StringIndexRef(3))
	assert.Empty(t, rec.Args)

	var buf bytes.Buffer
	require.NoError(t, rec.Write(&buf))

	records := readAll(t, &buf)
	require.Len(t, records, 1)
	got, ok := records[0].(EventRecord)
	require.True(t, ok)
	assert.Equal(t, EventDurationEnd, got.Type)
	assert.Empty(t, got.Args)
}

func TestEventArgumentsCapped(t *testing.T) {
	args := make([]Argument, MaxArguments+5)
	for i := range args {
		args[i] = Int64Arg(StringIndexRef(uint16(i+1)), int64(i))
	}

	rec := NewInstantRecord(1, ThreadIndexRef(1), StringIndexRef(2), StringIndexRef(3), args)
	require.Len(t, rec.Args, MaxArguments)

	var buf bytes.Buffer
	require.NoError(t, rec.Write(&buf))

	records := readAll(t, &buf)
	require.Len(t, records, 1)
	assert.Len(t, records[0].(EventRecord).Args, MaxArguments)
}

func TestRecordsAreWordAligned(t *testing.T) {
	records := []Record{
		NewMagicRecord(),
		NewProviderInfoRecord(1, "abc"),
		NewStringRecord(1, "odd-length"),
		NewThreadRecord(1, 2, 3),
		NewInstantRecord(1, InlineThreadRef(4, 5), InlineStringRef("cat"), InlineStringRef("name"),
			[]Argument{StringArg(InlineStringRef("k"), InlineStringRef("v"))}),
	}
	for _, rec := range records {
		var buf bytes.Buffer
		require.NoError(t, rec.Write(&buf))
		assert.Zerof(t, buf.Len()%WordSize, "record %#v not word aligned (%d bytes)", rec, buf.Len())
	}
}

func TestReaderSkipsUnknownRecordType(t *testing.T) {
	var buf bytes.Buffer

	// Fabricate a two-word record of an unmodeled type.
	unknown := make([]byte, 2*WordSize)
	binary.LittleEndian.PutUint64(unknown, uint64(0xF)|uint64(2)<<4)
	buf.Write(unknown)

	require.NoError(t, NewStringRecord(1, "after").Write(&buf))

	records := readAll(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, StringRecord{Index: 1, Value: "after"}, records[0])
}

func TestReaderEmptyStream(t *testing.T) {
	_, err := NewReader(bytes.NewReader(nil)).Next()
	assert.Equal(t, io.EOF, err)
}

func TestReaderTruncatedRecord(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewStringRecord(1, "hello").Write(&buf))
	truncated := buf.Bytes()[:buf.Len()-WordSize]

	r := NewReader(bytes.NewReader(truncated))
	_, err := r.Next()
	assert.Error(t, err)
}

func TestStringTruncation(t *testing.T) {
	long := string(make([]byte, MaxStringLength+100))
	rec := NewStringRecord(1, long)
	assert.Len(t, rec.Value, MaxStringLength)

	name := string(make([]byte, MaxProviderNameLength+10))
	prov := NewProviderInfoRecord(1, name)
	assert.Len(t, prov.Name, MaxProviderNameLength)

	ref := InlineStringRef(long)
	assert.Len(t, ref.Value, MaxInlineStringLength)
}

func TestInlineEmptyStringNormalizes(t *testing.T) {
	ref := InlineStringRef("")
	assert.Equal(t, StringRef{}, ref, "empty inline value must normalize to the empty reference")

	// The normalized form survives an encode/decode round trip.
	rec := NewInstantRecord(1, ThreadIndexRef(1), StringIndexRef(2), ref, nil)
	var buf bytes.Buffer
	require.NoError(t, rec.Write(&buf))

	records := readAll(t, &buf)
	require.Len(t, records, 1)
	assert.Equal(t, rec, records[0])
}
