package shell

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/bobby-s-dev/flight-concierge/internal/models"
	"github.com/bobby-s-dev/flight-concierge/internal/store"
	"github.com/bobby-s-dev/flight-concierge/internal/tools"
)

const (
	noFlightsMessage = "No se encontraron vuelos para esa búsqueda."
	searchUsage      = "Formato incorrecto. Usa: buscar vuelo ORIGEN DESTINO FECHA"
	fileUsage        = "Formato incorrecto. Usa: archivo guardar NOMBRE TEXTO | archivo leer NOMBRE | archivo listar | archivo borrar NOMBRE"
	gitUsage         = "Formato incorrecto. Usa: git commit MENSAJE"
	chessUsage       = "Formato incorrecto. Usa: ajedrez FEN"
	chatErrorPrefix  = "Lo siento, hubo un error con el LLM: "
	farewell         = "¡Hasta luego! 👋"
)

const helpText = `Comandos disponibles:
  buscar vuelo ORIGEN DESTINO FECHA   busca vuelos (ej: buscar vuelo GUA PTY 2025-12-01)
  archivo guardar NOMBRE TEXTO        guarda un archivo en la sesión
  archivo leer NOMBRE                 muestra un archivo
  archivo listar                      lista los archivos de la sesión
  archivo borrar NOMBRE               borra un archivo
  git commit MENSAJE                  crea un commit con el directorio de trabajo
  ajedrez FEN                         analiza una posición de ajedrez
  ver log                             muestra el log de interacciones
  ayuda                               muestra esta ayuda
  salir                               termina la sesión
Cualquier otro texto se envía al asistente. Si menciona dos ciudades y una
fecha (AAAA-MM-DD o DD-MM-AAAA) se buscan vuelos directamente.`

func renderWelcome(w io.Writer) {
	fmt.Fprintln(w, "Bienvenido al asistente de vuelos 🚀")
	fmt.Fprintln(w, "Escribe 'ver log' para mostrar el historial de interacciones")
	fmt.Fprintln(w, "Escribe 'ayuda' para ver los comandos disponibles")
	fmt.Fprintln(w, "Escribe 'salir' para terminar la sesión")
	fmt.Fprintln(w)
}

// renderFlights prints the search result for a human. It is display only and
// drops information, so it cannot be parsed back.
func renderFlights(w io.Writer, resp models.FlightsResponse) {
	if len(resp.Flights) == 0 {
		fmt.Fprintln(w, noFlightsMessage)
		return
	}

	fmt.Fprintln(w, "\nVuelos encontrados:")
	for _, f := range resp.Flights {
		fmt.Fprintf(w, "- %s %s | Salida: %s | Llegada: %s | Estado: %s\n",
			f.Airline, f.FlightNumber, f.DepartureTime, f.ArrivalTime, f.Status)
		fmt.Fprintf(w, "  Clima en destino: %s°C, %s\n", formatTemperature(f.Weather.Temperature), f.Weather.Condition)
		fmt.Fprintln(w, "  Actividades sugeridas:")
		for _, a := range f.Activities {
			fmt.Fprintf(w, "   * %s (Rating: %s)\n", a.Name, formatRating(a.Rating))
		}
	}
	fmt.Fprintln(w)
}

func renderLog(w io.Writer, log []models.InteractionLogEntry) error {
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "\n=== LOG DE INTERACCIONES ===")
	fmt.Fprintln(w, string(data))
	fmt.Fprintln(w, "===========================")
	fmt.Fprintln(w)
	return nil
}

func renderFiles(w io.Writer, files []store.File) {
	if len(files) == 0 {
		fmt.Fprintln(w, "No hay archivos guardados.")
		return
	}
	fmt.Fprintln(w, "Archivos:")
	for _, f := range files {
		fmt.Fprintf(w, "  - %s (%d bytes)\n", f.Name, f.Size)
	}
}

func renderAnalysis(w io.Writer, a tools.Analysis) {
	if a.Ponder != "" {
		fmt.Fprintf(w, "Mejor jugada: %s (respuesta esperada: %s)\n", a.BestMove, a.Ponder)
	} else {
		fmt.Fprintf(w, "Mejor jugada: %s\n", a.BestMove)
	}
	if a.Score != "" {
		fmt.Fprintf(w, "Evaluación: %s (profundidad %d)\n", a.Score, a.Depth)
	}
}

// formatTemperature prints whole degrees without decimals.
func formatTemperature(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

// formatRating keeps at least one decimal, so 5 prints as 5.0.
func formatRating(r float64) string {
	if r == math.Trunc(r) {
		return strconv.FormatFloat(r, 'f', 1, 64)
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
