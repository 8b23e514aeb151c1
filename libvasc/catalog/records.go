package catalog

import (
	"github.com/gogo/protobuf/proto"
)

// MorphologyRecord describes one successfully processed input.
type MorphologyRecord struct {
	ID          string   `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Path        string   `protobuf:"bytes,2,opt,name=path,proto3" json:"path,omitempty"`
	ContentHash []byte   `protobuf:"bytes,3,opt,name=content_hash,json=contentHash,proto3" json:"content_hash,omitempty"`
	Format      string   `protobuf:"bytes,4,opt,name=format,proto3" json:"format,omitempty"`
	RunID       string   `protobuf:"bytes,5,opt,name=run_id,json=runId,proto3" json:"run_id,omitempty"`
	ProcessedAt int64    `protobuf:"varint,6,opt,name=processed_at,json=processedAt,proto3" json:"processed_at,omitempty"`
	NumSamples  int64    `protobuf:"varint,7,opt,name=num_samples,json=numSamples,proto3" json:"num_samples,omitempty"`
	NumSections int64    `protobuf:"varint,8,opt,name=num_sections,json=numSections,proto3" json:"num_sections,omitempty"`
	TotalLength float64  `protobuf:"fixed64,9,opt,name=total_length,json=totalLength,proto3" json:"total_length,omitempty"`
	TotalVolume float64  `protobuf:"fixed64,10,opt,name=total_volume,json=totalVolume,proto3" json:"total_volume,omitempty"`
	Artifacts   []string `protobuf:"bytes,11,rep,name=artifacts,proto3" json:"artifacts,omitempty"`
}

func (m *MorphologyRecord) Reset()         { *m = MorphologyRecord{} }
func (m *MorphologyRecord) String() string { return proto.CompactTextString(m) }
func (*MorphologyRecord) ProtoMessage()    {}

// CatalogState is the catalog's header record.
type CatalogState struct {
	MajorVers  int32  `protobuf:"varint,1,opt,name=major_vers,json=majorVers,proto3" json:"major_vers,omitempty"`
	MinorVers  int32  `protobuf:"varint,2,opt,name=minor_vers,json=minorVers,proto3" json:"minor_vers,omitempty"`
	NumRecords uint64 `protobuf:"varint,3,opt,name=num_records,json=numRecords,proto3" json:"num_records,omitempty"`
}

func (m *CatalogState) Reset()         { *m = CatalogState{} }
func (m *CatalogState) String() string { return proto.CompactTextString(m) }
func (*CatalogState) ProtoMessage()    {}
