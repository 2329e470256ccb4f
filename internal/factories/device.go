package factories

import (
	"math/rand"

	"github.com/chrisdamba/trafficsim/internal/models"
	"github.com/jaswdr/faker"
	"github.com/lucsky/cuid"
)

// DeviceFactory makes fixture sensors for monitored locations.
type DeviceFactory struct {
	fake faker.Faker
}

func NewDeviceFactory(seed int64) *DeviceFactory {
	if seed == 0 {
		return &DeviceFactory{fake: faker.New()}
	}
	return &DeviceFactory{fake: faker.NewWithSeed(rand.NewSource(seed))}
}

func (df *DeviceFactory) CreateDevice(location string) *models.Device {
	deviceType := df.fake.RandomStringElement([]string{models.DeviceTypeTrafficSensor, models.DeviceTypeCamera})
	return &models.Device{
		ID:           cuid.New(),
		DeviceID:     df.fake.Numerify("TS-####-####"),
		Name:         location + " " + deviceType,
		Type:         deviceType,
		Location:     location,
		Manufacturer: df.fake.Company().Name(),
		Status:       models.DeviceStatusOnline,
	}
}
