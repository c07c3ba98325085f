package domain

import "time"

// WeatherData son las condiciones actuales de una ubicación. No se persiste.
type WeatherData struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Description string  `json:"description"`
	Units       string  `json:"units"`
	// UTCOffset es el desplazamiento horario de la ubicación en segundos.
	UTCOffset   int     `json:"utc_offset"`
}

// TemperatureSymbol devuelve la unidad de temperatura según el sistema pedido a la API.
func (w WeatherData) TemperatureSymbol() string {
	switch w.Units {
	case "imperial":
		return "°F"
	case "standard":
		return "K"
	default:
		return "°C"
	}
}

// LocalTime convierte t a la hora local de la ubicación.
func (w WeatherData) LocalTime(t time.Time) time.Time {
	return t.UTC().Add(time.Duration(w.UTCOffset) * time.Second)
}
