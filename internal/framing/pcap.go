package framing

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// pcapngMagic is the block type of a pcapng Section Header Block.
const pcapngMagic = 0x0A0D0D0A

type packetSource interface {
	LinkType() layers.LinkType
	ReadPacketData() (data []byte, ci gopacket.CaptureInfo, err error)
}

// pcapReader yields the transport-layer payload of each captured packet.
type pcapReader struct {
	src     packetSource
	records int
	skipped int
}

func newPcapReader(r io.Reader) (*pcapReader, error) {
	br := bufio.NewReader(r)
	header, err := br.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("reading capture header: %w", err)
	}

	var src packetSource
	if binary.LittleEndian.Uint32(header) == pcapngMagic {
		ng, err := pcapgo.NewNgReader(br, pcapgo.DefaultNgReaderOptions)
		if err != nil {
			return nil, fmt.Errorf("opening pcapng capture: %w", err)
		}
		src = ng
	} else {
		pr, err := pcapgo.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("opening pcap capture: %w", err)
		}
		src = pr
	}
	return &pcapReader{src: src}, nil
}

func (p *pcapReader) Next() ([]byte, error) {
	for {
		data, _, err := p.src.ReadPacketData()
		if err != nil {
			// A capture cut short mid-packet ends the stream like a clean EOF.
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("reading packet: %w", err)
		}

		pkt := gopacket.NewPacket(data, p.src.LinkType(), gopacket.DecodeOptions{Lazy: true, NoCopy: true})
		tl := pkt.TransportLayer()
		if tl == nil || len(tl.LayerPayload()) == 0 {
			p.skipped++
			continue
		}
		p.records++
		return tl.LayerPayload(), nil
	}
}

func (p *pcapReader) Records() int {
	return p.records
}

// Skipped returns the number of packets without a transport payload.
func (p *pcapReader) Skipped() int {
	return p.skipped
}
