package display

import (
	"fmt"
	"net"
	"time"
)

// DefaultPanelAddr is the port ft-server listens on.
const DefaultPanelAddr = "localhost:1337"

// Panel envia cada frame como um datagrama PPM (protocolo Flaschen-Taschen)
// para o servidor que controla a matriz de LEDs.
type Panel struct {
	*Frame
	addr string
	conn net.Conn
}

func NewPanel(width, height int, addr string) *Panel {
	if addr == "" {
		addr = DefaultPanelAddr
	}
	return &Panel{Frame: NewFrame(width, height), addr: addr}
}

func (p *Panel) Initialize() error {
	conn, err := net.DialTimeout("udp", p.addr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("failed to reach LED panel at %s: %w", p.addr, err)
	}
	p.conn = conn
	p.Clear()
	return p.Push()
}

func (p *Panel) Push() error {
	if p.conn == nil {
		return fmt.Errorf("LED panel not initialized")
	}
	if _, err := p.conn.Write(p.packet()); err != nil {
		return fmt.Errorf("sending frame to %s: %w", p.addr, err)
	}
	return nil
}

// Cleanup apaga o painel antes de fechar a conexão.
func (p *Panel) Cleanup() error {
	if p.conn == nil {
		return nil
	}
	p.Clear()
	pushErr := p.Push()
	closeErr := p.conn.Close()
	p.conn = nil
	if pushErr != nil {
		return pushErr
	}
	return closeErr
}

func (p *Panel) packet() []byte {
	header := fmt.Sprintf("P6\n%d %d\n255\n", p.Width(), p.Height())
	return append([]byte(header), p.rgbBytes()...)
}
