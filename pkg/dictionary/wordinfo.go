package dictionary

import (
	"encoding/binary"
)

// WordInfo is the lexical payload of one dictionary entry. Split slices hold
// word ids; for user dictionary entries the ids may be qualified with a
// dictionary id in their top bits.
type WordInfo struct {
	Surface              string
	HeadwordLength       int
	POSID                int16
	NormalizedForm       string
	DictionaryFormWordID int32
	DictionaryForm       string
	ReadingForm          string
	AUnitSplit           []int32
	BUnitSplit           []int32
	WordStructure        []int32
}

// wordInfoList gives O(1) access to serialized WordInfo records through a
// per-entry offset table. Records are decoded lazily on access so the blob
// can stay inside the memory-mapped image.
type wordInfoList struct {
	offsets []uint32
	blob    []byte
}

// AppendWordInfo serializes one record onto buf. DictionaryForm is not
// stored; it is resolved from DictionaryFormWordID at read time.
func AppendWordInfo(buf []byte, wi WordInfo) []byte {
	buf = appendString(buf, wi.Surface)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(wi.HeadwordLength))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(wi.POSID))
	buf = appendString(buf, wi.NormalizedForm)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(wi.DictionaryFormWordID))
	buf = appendString(buf, wi.ReadingForm)
	buf = appendInt32Slice(buf, wi.AUnitSplit)
	buf = appendInt32Slice(buf, wi.BUnitSplit)
	buf = appendInt32Slice(buf, wi.WordStructure)
	return buf
}

func appendString(buf []byte, s string) []byte {
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...)
}

func appendInt32Slice(buf []byte, v []int32) []byte {
	buf = append(buf, byte(len(v)))
	for _, x := range v {
		buf = binary.LittleEndian.AppendUint32(buf, uint32(x))
	}
	return buf
}

func (l *wordInfoList) get(wordID int32) WordInfo {
	r := newReader(l.blob)
	r.pos = int(l.offsets[wordID])
	var wi WordInfo
	wi.Surface, _ = r.string()
	hwl, _ := r.u16()
	wi.HeadwordLength = int(hwl)
	wi.POSID, _ = r.i16()
	wi.NormalizedForm, _ = r.string()
	dfid, _ := r.u32()
	wi.DictionaryFormWordID = int32(dfid)
	wi.ReadingForm, _ = r.string()
	wi.AUnitSplit = readInt32Slice(r)
	wi.BUnitSplit = readInt32Slice(r)
	wi.WordStructure = readInt32Slice(r)
	if wi.NormalizedForm == "" {
		wi.NormalizedForm = wi.Surface
	}
	if wi.ReadingForm == "" {
		wi.ReadingForm = wi.Surface
	}
	wi.DictionaryForm = wi.Surface
	if wi.DictionaryFormWordID >= 0 && wi.DictionaryFormWordID != wordID {
		wi.DictionaryForm = l.get(wi.DictionaryFormWordID).Surface
	}
	return wi
}

func readInt32Slice(r *reader) []int32 {
	n, err := r.u8()
	if err != nil || n == 0 {
		return nil
	}
	v := make([]int32, n)
	for i := range v {
		u, _ := r.u32()
		v[i] = int32(u)
	}
	return v
}
