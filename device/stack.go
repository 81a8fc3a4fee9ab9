package device

import (
	"context"
	"sync"

	"github.com/betz-engineering/uitousb/device/hal"
	"github.com/betz-engineering/uitousb/pkg"
)

// Stack binds the two protocol engines to a HAL and runs them.
//
// The bulk path (frame assembly) and the control path (command dispatch)
// run independently and share no state: the assembler owns its cursor and
// timestamp, the dispatcher only calls UI accessors. The stack therefore
// runs them on separate goroutines without any cross-path locking,
// mirroring the poll-task/interrupt split of the hardware build.
type Stack struct {
	hal      hal.VendorHAL
	device   *Device
	frames   *FrameAssembler
	commands *CommandDispatcher

	// State
	running bool
	mutex   sync.RWMutex

	// Context for cancellation
	ctx    context.Context
	cancel context.CancelFunc
	done   sync.WaitGroup

	// Reusable buffers for zero-allocation loops
	bulkBuf  [BulkMaxPacketSize]byte
	setupBuf hal.SetupPacket
}

// NewStack creates a stack for the given device identity, display sink,
// and UI port.
func NewStack(dev *Device, h hal.VendorHAL, sink DisplaySink, ui UIPort) *Stack {
	return &Stack{
		hal:      h,
		device:   dev,
		frames:   NewFrameAssembler(sink),
		commands: NewCommandDispatcher(ui),
	}
}

// Device returns the device identity.
func (s *Stack) Device() *Device {
	return s.device
}

// Frames returns the bulk frame assembler.
func (s *Stack) Frames() *FrameAssembler {
	return s.frames
}

// Commands returns the control command dispatcher.
func (s *Stack) Commands() *CommandDispatcher {
	return s.commands
}

// Start initializes the HAL and starts the bulk and control loops.
func (s *Stack) Start(ctx context.Context) error {
	s.mutex.Lock()
	if s.running {
		s.mutex.Unlock()
		return pkg.ErrAlreadyRunning
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mutex.Unlock()

	if err := s.hal.Init(s.ctx); err != nil {
		return err
	}
	if err := s.hal.Start(); err != nil {
		return err
	}

	s.mutex.Lock()
	s.running = true
	s.mutex.Unlock()

	pkg.LogDebug(pkg.ComponentDevice, "stack started",
		"serial", s.device.Serial())

	s.done.Add(2)
	go s.bulkLoop()
	go s.controlLoop()

	return nil
}

// Stop cancels the loops and detaches from the bus.
func (s *Stack) Stop() error {
	s.mutex.Lock()
	if !s.running {
		s.mutex.Unlock()
		return nil
	}
	s.running = false
	if s.cancel != nil {
		s.cancel()
	}
	s.mutex.Unlock()

	err := s.hal.Stop()
	s.done.Wait()

	pkg.LogDebug(pkg.ComponentDevice, "stack stopped")
	return err
}

// IsRunning returns true if the stack is running.
func (s *Stack) IsRunning() bool {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return s.running
}

// bulkLoop drains the bulk OUT endpoint into the frame assembler.
// This is the Go rendition of the polled vendor task: one packet per
// iteration, timestamped as it is handed to the assembler.
func (s *Stack) bulkLoop() {
	defer s.done.Done()

	for {
		n, err := s.hal.ReadBulk(s.ctx, s.bulkBuf[:])
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}
			pkg.LogWarn(pkg.ComponentFrame, "bulk read failed",
				"error", err)
			continue
		}
		if n == 0 {
			continue
		}
		// The vendor task only runs while the host has the interface
		// configured; anything read before then is not frame data.
		if !s.hal.Mounted() {
			continue
		}
		s.frames.Ingest(s.bulkBuf[:n], s.hal.NowMS())
	}
}

// controlLoop services vendor control transfers synchronously: read a
// SETUP packet, dispatch it, complete the transfer per the verdict.
func (s *Stack) controlLoop() {
	defer s.done.Done()

	for {
		if err := s.hal.ReadSetup(s.ctx, &s.setupBuf); err != nil {
			if s.ctx.Err() != nil {
				return
			}
			pkg.LogWarn(pkg.ComponentCommand, "setup read failed",
				"error", err)
			continue
		}

		var setup SetupPacket
		setup.RequestType = s.setupBuf.RequestType
		setup.Request = s.setupBuf.Request
		setup.Value = s.setupBuf.Value
		setup.Index = s.setupBuf.Index
		setup.Length = s.setupBuf.Length

		if err := s.completeSetup(&setup); err != nil {
			pkg.LogWarn(pkg.ComponentCommand, "setup completion failed",
				"error", err,
				"request", setup.String())
		}
	}
}

// completeSetup dispatches one SETUP packet and drives the HAL according
// to the verdict.
func (s *Stack) completeSetup(setup *SetupPacket) error {
	verdict := s.commands.HandleSetup(StageSetup, setup)

	pkg.LogDebug(pkg.ComponentCommand, "setup handled",
		"request", setup.String(),
		"verdict", verdict.Kind.String())

	switch verdict.Kind {
	case VerdictReply:
		data := verdict.Data
		// Never send more than the host asked for.
		if int(setup.Length) < len(data) {
			data = data[:setup.Length]
		}
		return s.hal.Reply(data)
	case VerdictStall:
		return s.hal.Stall()
	default:
		return s.hal.Ack()
	}
}
