package trackerbus

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/goburrow/modbus"
)

// Modbus client configuration
const (
	DefaultSlaveAddress = 1
	MinSlaveAddress     = 1
	MaxSlaveAddress     = 246
)

// Register map of the tracker controller. Angles travel as integers
// scaled by 100 (0.01 degree resolution). Azimuth registers are
// unsigned (0..36000), elevation registers are signed (-9000..9000).
const (
	regControlMode     = 40000 // 0: manual, 1: remote tracking
	regTargetAzimuth   = 40001 // u16, 0.01 deg
	regTargetElevation = 40002 // s16, 0.01 deg
	regStowCommand     = 40010 // write 1 to stow, 0 to release

	regRunningState     = 30000 // see TrackerState
	regActualAzimuth    = 30001 // u16, 0.01 deg
	regActualElevation  = 30002 // s16, 0.01 deg
	regMotorTemperature = 30003 // s16, 0.1 degC
	regWindSpeed        = 30004 // u16, 0.1 m/s
	regAlarm1           = 30005
	regAlarm2           = 30006
)

// Tracker running states as reported in the state register
const (
	StateIdle     uint16 = 0
	StateTracking uint16 = 1
	StateStowed   uint16 = 2
	StateFault    uint16 = 3
)

// TrackerClient talks to a single-axis or dual-axis tracker controller
// over Modbus.
// For TCP: use NewTCPClient
// For RTU: use NewRTUClient
type TrackerClient struct {
	client     modbus.Client
	handler    *modbus.RTUClientHandler
	tcpHandler *modbus.TCPClientHandler
}

// NewRTUClient creates a tracker client over a serial RS-485 line
func NewRTUClient(device string, baudRate int, slaveID byte) (*TrackerClient, error) {
	handler := modbus.NewRTUClientHandler(device)
	handler.BaudRate = baudRate
	handler.DataBits = 8
	handler.Parity = "N"
	handler.StopBits = 1
	handler.SlaveId = slaveID
	handler.Timeout = 1 * time.Second

	err := handler.Connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %v", err)
	}

	return &TrackerClient{
		client:  modbus.NewClient(handler),
		handler: handler,
	}, nil
}

// NewTCPClient creates a tracker client over Modbus TCP
func NewTCPClient(address string, slaveID byte) (*TrackerClient, error) {
	handler := modbus.NewTCPClientHandler(address)
	handler.SlaveId = slaveID
	handler.Timeout = 1 * time.Second

	err := handler.Connect()
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %v", err)
	}

	return &TrackerClient{
		client:     modbus.NewClient(handler),
		tcpHandler: handler,
	}, nil
}

// Close closes the Modbus connection
func (c *TrackerClient) Close() error {
	if c.handler != nil {
		return c.handler.Close()
	}
	if c.tcpHandler != nil {
		return c.tcpHandler.Close()
	}
	return nil
}

// SetSlaveID changes the slave ID for subsequent operations
func (c *TrackerClient) SetSlaveID(slaveID byte) {
	if c.handler != nil {
		c.handler.SlaveId = slaveID
	}
	if c.tcpHandler != nil {
		c.tcpHandler.SlaveId = slaveID
	}
}

// Helper functions for data conversion
func bytesToU16(data []byte) uint16 {
	return binary.BigEndian.Uint16(data)
}

func bytesToS16(data []byte) int16 {
	return int16(binary.BigEndian.Uint16(data))
}

// TrackerStatus is the live state of the tracker controller
type TrackerStatus struct {
	State            uint16
	ActualAzimuth    float64 // degrees, 0..360 from north
	ActualElevation  float64 // degrees above horizon
	MotorTemperature float64 // °C
	WindSpeed        float64 // m/s
	Alarm1           uint16
	Alarm2           uint16
}

// ReadStatus reads the running state and actual position of the tracker
func (c *TrackerClient) ReadStatus() (*TrackerStatus, error) {
	data, err := c.client.ReadInputRegisters(regRunningState, 7)
	if err != nil {
		return nil, fmt.Errorf("failed to read tracker status: %v", err)
	}

	status := &TrackerStatus{
		State:            bytesToU16(data[0:2]),
		ActualAzimuth:    float64(bytesToU16(data[2:4])) / 100.0,
		ActualElevation:  float64(bytesToS16(data[4:6])) / 100.0,
		MotorTemperature: float64(bytesToS16(data[6:8])) / 10.0,
		WindSpeed:        float64(bytesToU16(data[8:10])) / 10.0,
		Alarm1:           bytesToU16(data[10:12]),
		Alarm2:           bytesToU16(data[12:14]),
	}

	return status, nil
}

// WriteTargetPosition commands the tracker to the given azimuth and
// elevation. Azimuth must be in [0, 360), elevation in [-90, 90].
func (c *TrackerClient) WriteTargetPosition(azimuth, elevation float64) error {
	if azimuth < 0 || azimuth >= 360 {
		return fmt.Errorf("invalid azimuth %.2f: must be in [0, 360)", azimuth)
	}
	if elevation < -90 || elevation > 90 {
		return fmt.Errorf("invalid elevation %.2f: must be in [-90, 90]", elevation)
	}

	_, err := c.client.WriteSingleRegister(regTargetAzimuth, uint16(azimuth*100))
	if err != nil {
		return fmt.Errorf("failed to write azimuth target: %v", err)
	}
	_, err = c.client.WriteSingleRegister(regTargetElevation, uint16(int16(elevation*100)))
	if err != nil {
		return fmt.Errorf("failed to write elevation target: %v", err)
	}
	return nil
}

// EnableTracking switches the controller into remote tracking mode
func (c *TrackerClient) EnableTracking() error {
	_, err := c.client.WriteSingleRegister(regControlMode, 1)
	return err
}

// DisableTracking switches the controller back to manual mode
func (c *TrackerClient) DisableTracking() error {
	_, err := c.client.WriteSingleRegister(regControlMode, 0)
	return err
}

// Stow drives the tracker to its safe stow position
func (c *TrackerClient) Stow() error {
	_, err := c.client.WriteSingleRegister(regStowCommand, 1)
	return err
}

// Release clears the stow command so tracking can resume
func (c *TrackerClient) Release() error {
	_, err := c.client.WriteSingleRegister(regStowCommand, 0)
	return err
}
