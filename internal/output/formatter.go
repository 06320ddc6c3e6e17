// =============================================================================
// internal/output/formatter.go - Output formatting for scan summaries
// =============================================================================
package output

import (
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/bryanCE/portscan/internal/aggregator"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatCSV   OutputFormat = "csv"
	FormatXML   OutputFormat = "xml"
)

// Formatter handles output formatting for different formats
type Formatter struct {
	format OutputFormat
}

// NewFormatter creates a new formatter with the specified format
func NewFormatter(format OutputFormat) *Formatter {
	return &Formatter{format: format}
}

// FormatData is a generic method that handles all format types
func (f *Formatter) FormatData(data interface{}, writer io.Writer, tableFormatter func(interface{}, io.Writer) error, csvFormatter func(interface{}, io.Writer) error) error {
	switch f.format {
	case FormatJSON:
		return f.formatJSON(data, writer)
	case FormatCSV:
		if csvFormatter != nil {
			return csvFormatter(data, writer)
		}
		return fmt.Errorf("CSV formatting not implemented for this data type")
	case FormatXML:
		return f.formatXML(data, writer)
	default:
		if tableFormatter != nil {
			return tableFormatter(data, writer)
		}
		return fmt.Errorf("table formatting not implemented for this data type")
	}
}

func (f *Formatter) formatJSON(data interface{}, writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func (f *Formatter) formatXML(data interface{}, writer io.Writer) error {
	encoder := xml.NewEncoder(writer)
	encoder.Indent("", "  ")
	return encoder.Encode(data)
}

func (f *Formatter) createAndRenderTable(headers []string, rows [][]string, writer io.Writer) error {
	table := NewTable(headers)
	for _, row := range rows {
		table.AddRow(row)
	}
	return table.Render(writer)
}

// scanResultXML is a flat, XML-friendly projection of aggregator.Result;
// encoding/xml can't marshal a map directly.
type scanResultXML struct {
	XMLName xml.Name      `xml:"scan"`
	Hosts   []hostXML     `xml:"host"`
}

type hostXML struct {
	Address string   `xml:"address,attr"`
	Ports   []uint16 `xml:"port"`
}

func toXMLProjection(result aggregator.Result) scanResultXML {
	proj := scanResultXML{Hosts: make([]hostXML, 0, len(result.Hosts))}
	for _, host := range result.Hosts {
		proj.Hosts = append(proj.Hosts, hostXML{Address: host, Ports: result.PortsByHost[host]})
	}
	return proj
}

// FormatScanResult renders a completed scan's per-host open-port summary in
// whichever format f was constructed with. JSON/XML are handled generically
// by FormatData; XML additionally needs the flat projection since
// encoding/xml can't marshal result.PortsByHost as a map.
func (f *Formatter) FormatScanResult(result aggregator.Result, writer io.Writer) error {
	data := interface{}(result)
	if f.format == FormatXML {
		data = toXMLProjection(result)
	}
	return f.FormatData(data, writer, f.formatScanResultTable, f.formatScanResultCSV)
}

func (f *Formatter) formatScanResultTable(data interface{}, writer io.Writer) error {
	result := data.(aggregator.Result)
	headers := []string{"Host", "Open Ports"}
	rows := make([][]string, 0, len(result.Hosts))
	for _, host := range result.Hosts {
		rows = append(rows, []string{host, joinPorts(result.PortsByHost[host])})
	}
	return f.createAndRenderTable(headers, rows, writer)
}

func (f *Formatter) formatScanResultCSV(data interface{}, writer io.Writer) error {
	result := data.(aggregator.Result)
	csvWriter := csv.NewWriter(writer)
	defer csvWriter.Flush()

	if err := csvWriter.Write([]string{"host", "port"}); err != nil {
		return err
	}
	for _, host := range result.Hosts {
		for _, port := range result.PortsByHost[host] {
			if err := csvWriter.Write([]string{host, strconv.Itoa(int(port))}); err != nil {
				return err
			}
		}
	}
	return nil
}

// FormatGreppable renders the RustScan-style "ip -> [p1,p2,...]" summary
// line per host, with no spaces after the commas.
func FormatGreppable(result aggregator.Result, writer io.Writer) error {
	for _, host := range result.Hosts {
		ports := result.PortsByHost[host]
		strs := make([]string, len(ports))
		for i, p := range ports {
			strs[i] = strconv.Itoa(int(p))
		}
		if _, err := fmt.Fprintf(writer, "%s -> [%s]\n", host, strings.Join(strs, ",")); err != nil {
			return err
		}
	}
	return nil
}

func joinPorts(ports []uint16) string {
	sorted := make([]uint16, len(ports))
	copy(sorted, ports)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	strs := make([]string, len(sorted))
	for i, p := range sorted {
		strs[i] = strconv.Itoa(int(p))
	}
	return strings.Join(strs, ", ")
}
