package vlan

import "encoding/binary"

// IPv4 header field offsets and protocol constants used by the capture
// and rewrite paths. All offsets are relative to the start of the IP header.
const (
	offProtocol   = 9
	offIPChecksum = 10
	offSrcAddr    = 12
	offDstAddr    = 16

	protocolUDP = 17

	// Maximum IPv4 datagram size; capture and rewrite buffers hold one whole
	// datagram each.
	maxDatagram = 65536
)

// broadcastAddr is the limited broadcast address 255.255.255.255. Only
// datagrams destined here are forwarded.
var broadcastAddr = [4]byte{255, 255, 255, 255}

// ReadUint16 reads a big-endian 16-bit value at offset off.
func ReadUint16(b []byte, off int) uint16 {
	return binary.BigEndian.Uint16(b[off : off+2])
}

// ReadUint32 reads a big-endian 32-bit value at offset off.
func ReadUint32(b []byte, off int) uint32 {
	return binary.BigEndian.Uint32(b[off : off+4])
}

// PutUint16 writes a big-endian 16-bit value at offset off.
func PutUint16(b []byte, off int, v uint16) {
	binary.BigEndian.PutUint16(b[off:off+2], v)
}

// PutUint32 writes a big-endian 32-bit value at offset off.
func PutUint32(b []byte, off int, v uint32) {
	binary.BigEndian.PutUint32(b[off:off+4], v)
}

// addWords sums data as consecutive big-endian 16-bit words into sum.
// A trailing odd byte is taken as the high byte of a final word, so only the
// last segment of a checksum input may have odd length.
func addWords(sum uint32, data []byte) uint32 {
	n := len(data)
	for i := 0; i+1 < n; i += 2 {
		sum += uint32(binary.BigEndian.Uint16(data[i : i+2]))
	}
	if n%2 != 0 {
		sum += uint32(data[n-1]) << 8
	}
	return sum
}

// foldChecksum folds all carries into 16 bits and returns the one's
// complement. A zero sum yields 0xFFFF.
func foldChecksum(sum uint32) uint16 {
	for sum > 0xffff {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	return ^uint16(sum)
}

// IPv4Checksum computes the Internet checksum over hdr, which must be the IP
// header with its checksum field zeroed by the caller.
func IPv4Checksum(hdr []byte) uint16 {
	return foldChecksum(addWords(0, hdr))
}

// UDPv4Checksum computes the UDPv4 checksum over the pseudo-header
// (saddr, daddr, 0, 17, udpLen), the 8-byte UDP header (checksum field zeroed
// by the caller) and the payload. The literal folded value is returned; a
// result of 0 is not mapped to 0xFFFF.
func UDPv4Checksum(saddr, daddr uint32, udpHeader []byte, udpLen uint16, payload []byte) uint16 {
	sum := uint32(saddr>>16) + uint32(saddr&0xffff)
	sum += uint32(daddr>>16) + uint32(daddr&0xffff)
	sum += protocolUDP
	sum += uint32(udpLen)
	sum = addWords(sum, udpHeader[:8])
	sum = addWords(sum, payload)
	return foldChecksum(sum)
}
