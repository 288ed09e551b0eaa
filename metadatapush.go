package rsocket

var _ frameBody = (*MetadataPushFrame)(nil)

// MetadataPushFrame pushes connection-level metadata with no associated
// stream (always stream 0, METADATA flag always set).
//
// https://rsocket.io/about/protocol/#metadata_push-frame-0x0c
type MetadataPushFrame struct {
	metadata []byte
}

func NewMetadataPushFrame(metadata []byte) *MetadataPushFrame {
	return &MetadataPushFrame{metadata: metadata}
}

func (f *MetadataPushFrame) Header() FrameHeader {
	return FrameHeader{StreamID: 0, Type: FrameMetadataPush, Flags: FlagMetadata}
}

func (f *MetadataPushFrame) Reset()           { *f = MetadataPushFrame{} }
func (f *MetadataPushFrame) Metadata() []byte { return f.metadata }

func (f *MetadataPushFrame) appendBody(dst []byte) ([]byte, FrameFlags) {
	return append(dst, f.metadata...), FlagMetadata
}

func (f *MetadataPushFrame) readBody(h FrameHeader, body []byte) error {
	f.metadata = append([]byte(nil), body...)
	return nil
}
