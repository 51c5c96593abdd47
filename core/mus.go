package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the persisted domain types. The encoding
// is field-ordered: changing field order or types is a breaking change for
// existing databases.

var (
	// IDMUS serializes an ID.
	IDMUS = idMUS{}
	// DocumentMUS serializes a Document.
	DocumentMUS = documentMUS{}
	// ChunkMUS serializes a Chunk.
	ChunkMUS = chunkMUS{}
	// SearchQueryMUS serializes a SearchQuery.
	SearchQueryMUS = searchQueryMUS{}
	// TableMUS serializes a Table.
	TableMUS = tableMUS{}
	// FigureMUS serializes a Figure.
	FigureMUS = figureMUS{}
	// ReferenceMUS serializes a Reference.
	ReferenceMUS = referenceMUS{}
)

var (
	strPtrMUS   = ord.NewPtrSer[string](ord.String)
	intPtrMUS   = ord.NewPtrSer[int](varint.Int)
	strSliceMUS = ord.NewSliceSer[string](ord.String)
	cellsMUS    = ord.NewSliceSer[[]string](strSliceMUS)
	vectorMUS   = ord.NewSliceSer[float32](raw.Float32)
	sectionsMUS = ord.NewMapSer[string, string](ord.String, ord.String)

	tablesMUS     = ord.NewSliceSer[Table](TableMUS)
	figuresMUS    = ord.NewSliceSer[Figure](FigureMUS)
	referencesMUS = ord.NewSliceSer[Reference](ReferenceMUS)
)

// Timestamps are stored as Unix microseconds.

func marshalTime(t time.Time, bs []byte) int {
	return varint.Int64.Marshal(t.UnixMicro(), bs)
}

func unmarshalTime(bs []byte) (time.Time, int, error) {
	us, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return time.Time{}, n, err
	}
	return time.UnixMicro(us).UTC(), n, nil
}

func sizeTime(t time.Time) int {
	return varint.Int64.Size(t.UnixMicro())
}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

type tableMUS struct{}

func (tableMUS) Marshal(t Table, bs []byte) (n int) {
	n = varint.Int.Marshal(t.Page, bs)
	n += varint.Int.Marshal(t.Index, bs[n:])
	n += strPtrMUS.Marshal(t.Caption, bs[n:])
	n += cellsMUS.Marshal(t.Cells, bs[n:])
	return n
}

func (tableMUS) Unmarshal(bs []byte) (t Table, n int, err error) {
	var n1 int
	if t.Page, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	if t.Index, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return t, n + n1, err
	}
	n += n1
	if t.Caption, n1, err = strPtrMUS.Unmarshal(bs[n:]); err != nil {
		return t, n + n1, err
	}
	n += n1
	if t.Cells, n1, err = cellsMUS.Unmarshal(bs[n:]); err != nil {
		return t, n + n1, err
	}
	n += n1
	return t, n, nil
}

func (tableMUS) Size(t Table) (size int) {
	size = varint.Int.Size(t.Page)
	size += varint.Int.Size(t.Index)
	size += strPtrMUS.Size(t.Caption)
	size += cellsMUS.Size(t.Cells)
	return size
}

func (tableMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = varint.Int.Skip(bs); err != nil {
		return
	}
	if n1, err = varint.Int.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = strPtrMUS.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = cellsMUS.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	return n + n1, nil
}

type figureMUS struct{}

func (figureMUS) Marshal(f Figure, bs []byte) (n int) {
	n = varint.Int.Marshal(f.Page, bs)
	n += varint.Int.Marshal(f.Index, bs[n:])
	n += strPtrMUS.Marshal(f.Caption, bs[n:])
	n += raw.Float64.Marshal(f.Width, bs[n:])
	n += raw.Float64.Marshal(f.Height, bs[n:])
	n += ord.String.Marshal(f.ImagePath, bs[n:])
	return n
}

func (figureMUS) Unmarshal(bs []byte) (f Figure, n int, err error) {
	var n1 int
	if f.Page, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	if f.Index, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.Caption, n1, err = strPtrMUS.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.Width, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.Height, n1, err = raw.Float64.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	if f.ImagePath, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return f, n + n1, err
	}
	n += n1
	return f, n, nil
}

func (figureMUS) Size(f Figure) (size int) {
	size = varint.Int.Size(f.Page)
	size += varint.Int.Size(f.Index)
	size += strPtrMUS.Size(f.Caption)
	size += raw.Float64.Size(f.Width)
	size += raw.Float64.Size(f.Height)
	size += ord.String.Size(f.ImagePath)
	return size
}

func (figureMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = varint.Int.Skip(bs); err != nil {
		return
	}
	for _, skip := range []func([]byte) (int, error){
		varint.Int.Skip, strPtrMUS.Skip, raw.Float64.Skip, raw.Float64.Skip, ord.String.Skip,
	} {
		if n1, err = skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	return n, nil
}

type referenceMUS struct{}

func (referenceMUS) Marshal(r Reference, bs []byte) (n int) {
	n = varint.Int.Marshal(r.Index, bs)
	n += ord.String.Marshal(r.Text, bs[n:])
	n += intPtrMUS.Marshal(r.Year, bs[n:])
	n += strSliceMUS.Marshal(r.Authors, bs[n:])
	return n
}

func (referenceMUS) Unmarshal(bs []byte) (r Reference, n int, err error) {
	var n1 int
	if r.Index, n, err = varint.Int.Unmarshal(bs); err != nil {
		return
	}
	if r.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.Year, n1, err = intPtrMUS.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	if r.Authors, n1, err = strSliceMUS.Unmarshal(bs[n:]); err != nil {
		return r, n + n1, err
	}
	n += n1
	return r, n, nil
}

func (referenceMUS) Size(r Reference) (size int) {
	size = varint.Int.Size(r.Index)
	size += ord.String.Size(r.Text)
	size += intPtrMUS.Size(r.Year)
	size += strSliceMUS.Size(r.Authors)
	return size
}

func (referenceMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = varint.Int.Skip(bs); err != nil {
		return
	}
	for _, skip := range []func([]byte) (int, error){
		ord.String.Skip, intPtrMUS.Skip, strSliceMUS.Skip,
	} {
		if n1, err = skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	return n, nil
}

type documentMUS struct{}

func (documentMUS) Marshal(d Document, bs []byte) (n int) {
	n = IDMUS.Marshal(d.Id, bs)
	n += ord.String.Marshal(d.Filename, bs[n:])
	n += varint.Int.Marshal(d.PageCount, bs[n:])
	n += strPtrMUS.Marshal(d.Title, bs[n:])
	n += strSliceMUS.Marshal(d.Authors, bs[n:])
	n += strPtrMUS.Marshal(d.DOI, bs[n:])
	n += strSliceMUS.Marshal(d.Keywords, bs[n:])
	n += ord.String.Marshal(d.FullText, bs[n:])
	n += sectionsMUS.Marshal(d.Sections, bs[n:])
	n += tablesMUS.Marshal(d.Tables, bs[n:])
	n += figuresMUS.Marshal(d.Figures, bs[n:])
	n += referencesMUS.Marshal(d.References, bs[n:])
	n += varint.Int.Marshal(int(d.Stages.Text), bs[n:])
	n += varint.Int.Marshal(int(d.Stages.Tables), bs[n:])
	n += varint.Int.Marshal(int(d.Stages.Figures), bs[n:])
	n += varint.Int.Marshal(int(d.Stages.References), bs[n:])
	n += varint.Int.Marshal(int(d.Status), bs[n:])
	n += marshalTime(d.UploadedAt, bs[n:])
	n += marshalTime(d.IndexedAt, bs[n:])
	return n
}

func (documentMUS) Unmarshal(bs []byte) (d Document, n int, err error) {
	var n1 int
	if d.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if d.Filename, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.PageCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Title, n1, err = strPtrMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Authors, n1, err = strSliceMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.DOI, n1, err = strPtrMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Keywords, n1, err = strSliceMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.FullText, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Sections, n1, err = sectionsMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Tables, n1, err = tablesMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Figures, n1, err = figuresMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.References, n1, err = referencesMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	var v int
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	d.Stages.Text = StageStatus(v)
	n += n1
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	d.Stages.Tables = StageStatus(v)
	n += n1
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	d.Stages.Figures = StageStatus(v)
	n += n1
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	d.Stages.References = StageStatus(v)
	n += n1
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	d.Status = DocumentStatus(v)
	n += n1
	if d.UploadedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.IndexedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	return d, n, nil
}

func (documentMUS) Size(d Document) (size int) {
	size = IDMUS.Size(d.Id)
	size += ord.String.Size(d.Filename)
	size += varint.Int.Size(d.PageCount)
	size += strPtrMUS.Size(d.Title)
	size += strSliceMUS.Size(d.Authors)
	size += strPtrMUS.Size(d.DOI)
	size += strSliceMUS.Size(d.Keywords)
	size += ord.String.Size(d.FullText)
	size += sectionsMUS.Size(d.Sections)
	size += tablesMUS.Size(d.Tables)
	size += figuresMUS.Size(d.Figures)
	size += referencesMUS.Size(d.References)
	size += varint.Int.Size(int(d.Stages.Text))
	size += varint.Int.Size(int(d.Stages.Tables))
	size += varint.Int.Size(int(d.Stages.Figures))
	size += varint.Int.Size(int(d.Stages.References))
	size += varint.Int.Size(int(d.Status))
	size += sizeTime(d.UploadedAt)
	size += sizeTime(d.IndexedAt)
	return size
}

func (documentMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	for _, skip := range []func([]byte) (int, error){
		ord.String.Skip, varint.Int.Skip, strPtrMUS.Skip, strSliceMUS.Skip,
		strPtrMUS.Skip, strSliceMUS.Skip, ord.String.Skip, sectionsMUS.Skip,
		tablesMUS.Skip, figuresMUS.Skip, referencesMUS.Skip,
		varint.Int.Skip, varint.Int.Skip, varint.Int.Skip, varint.Int.Skip,
		varint.Int.Skip, varint.Int64.Skip, varint.Int64.Skip,
	} {
		if n1, err = skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	return n, nil
}

type chunkMUS struct{}

func (chunkMUS) Marshal(c Chunk, bs []byte) (n int) {
	n = IDMUS.Marshal(c.DocumentId, bs)
	n += varint.Int.Marshal(c.Ordinal, bs[n:])
	n += ord.String.Marshal(c.Text, bs[n:])
	n += ord.String.Marshal(c.Section, bs[n:])
	n += varint.Int.Marshal(c.Page, bs[n:])
	n += varint.Int.Marshal(int(c.Type), bs[n:])
	n += vectorMUS.Marshal(c.Vector, bs[n:])
	return n
}

func (chunkMUS) Unmarshal(bs []byte) (c Chunk, n int, err error) {
	var n1 int
	if c.DocumentId, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if c.Ordinal, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Section, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	if c.Page, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	var v int
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	c.Type = ChunkType(v)
	n += n1
	if c.Vector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return c, n + n1, err
	}
	n += n1
	return c, n, nil
}

func (chunkMUS) Size(c Chunk) (size int) {
	size = IDMUS.Size(c.DocumentId)
	size += varint.Int.Size(c.Ordinal)
	size += ord.String.Size(c.Text)
	size += ord.String.Size(c.Section)
	size += varint.Int.Size(c.Page)
	size += varint.Int.Size(int(c.Type))
	size += vectorMUS.Size(c.Vector)
	return size
}

func (chunkMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	for _, skip := range []func([]byte) (int, error){
		varint.Int.Skip, ord.String.Skip, ord.String.Skip,
		varint.Int.Skip, varint.Int.Skip, vectorMUS.Skip,
	} {
		if n1, err = skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	return n, nil
}

type searchQueryMUS struct{}

func (searchQueryMUS) Marshal(q SearchQuery, bs []byte) (n int) {
	n = IDMUS.Marshal(q.Id, bs)
	n += ord.String.Marshal(q.Text, bs[n:])
	n += vectorMUS.Marshal(q.Vector, bs[n:])
	n += varint.Int.Marshal(q.ResultCount, bs[n:])
	n += raw.Float32.Marshal(q.TopScore, bs[n:])
	n += marshalTime(q.CreatedAt, bs[n:])
	return n
}

func (searchQueryMUS) Unmarshal(bs []byte) (q SearchQuery, n int, err error) {
	var n1 int
	if q.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if q.Text, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return q, n + n1, err
	}
	n += n1
	if q.Vector, n1, err = vectorMUS.Unmarshal(bs[n:]); err != nil {
		return q, n + n1, err
	}
	n += n1
	if q.ResultCount, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return q, n + n1, err
	}
	n += n1
	if q.TopScore, n1, err = raw.Float32.Unmarshal(bs[n:]); err != nil {
		return q, n + n1, err
	}
	n += n1
	if q.CreatedAt, n1, err = unmarshalTime(bs[n:]); err != nil {
		return q, n + n1, err
	}
	n += n1
	return q, n, nil
}

func (searchQueryMUS) Size(q SearchQuery) (size int) {
	size = IDMUS.Size(q.Id)
	size += ord.String.Size(q.Text)
	size += vectorMUS.Size(q.Vector)
	size += varint.Int.Size(q.ResultCount)
	size += raw.Float32.Size(q.TopScore)
	size += sizeTime(q.CreatedAt)
	return size
}

func (searchQueryMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	for _, skip := range []func([]byte) (int, error){
		ord.String.Skip, vectorMUS.Skip, varint.Int.Skip,
		raw.Float32.Skip, varint.Int64.Skip,
	} {
		if n1, err = skip(bs[n:]); err != nil {
			return n + n1, err
		}
		n += n1
	}
	return n, nil
}
