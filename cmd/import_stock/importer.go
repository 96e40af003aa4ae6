package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

type stockRow struct {
	Line     int
	Code     string
	Name     string
	StockMin int64
	StockMax int64
	Stock    int64
}

// parseRows lee el CSV separado por ';'. Con encoding "auto" el archivo se trata como
// ISO-8859-1 si no es UTF-8 válido. Una primera fila cuyo primer campo es "code" se salta.
func parseRows(r io.Reader, encoding string) ([]stockRow, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var src io.Reader = bytes.NewReader(raw)
	switch strings.ToLower(encoding) {
	case "latin1", "iso-8859-1":
		src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
	case "auto", "":
		if !utf8.Valid(raw) {
			src = transform.NewReader(src, charmap.ISO8859_1.NewDecoder())
		}
	case "utf8", "utf-8":
	default:
		return nil, fmt.Errorf("codificación no soportada: %s", encoding)
	}

	cr := csv.NewReader(src)
	cr.Comma = ';'
	cr.FieldsPerRecord = 5
	cr.TrimLeadingSpace = true

	var rows []stockRow
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(rec[0]), "code") {
			continue
		}
		row := stockRow{Line: line, Code: strings.TrimSpace(rec[0]), Name: strings.TrimSpace(rec[1])}
		nums := []*int64{&row.StockMin, &row.StockMax, &row.Stock}
		for i, dst := range nums {
			field := strings.TrimSpace(rec[i+2])
			if field == "" {
				continue
			}
			n, err := strconv.ParseInt(field, 10, 64)
			if err != nil || n < 0 {
				return nil, fmt.Errorf("línea %d: valor inválido %q", line, field)
			}
			*dst = n
		}
		rows = append(rows, row)
	}
	return rows, nil
}

type importSummary struct {
	Created   int
	Adjusted  int
	Unchanged int
}

// importer operaciones del ledger que usa la importación.
type importer interface {
	GetProductByCode(ctx context.Context, code string) (*entity.Product, error)
	CreateProduct(ctx context.Context, in inventory.CreateProductInput) (*entity.Product, error)
	RecordMovement(ctx context.Context, in inventory.RecordMovementInput) (*inventory.MovementResult, error)
	UpdateThresholds(ctx context.Context, id string, min, max int64, actor string) (*entity.Product, error)
}

// importRows aplica cada fila; un error en una fila no detiene las demás.
func importRows(ctx context.Context, ledger importer, rows []stockRow, actor string) (importSummary, error) {
	var (
		sum  importSummary
		errs []error
	)
	for _, row := range rows {
		p, err := ledger.GetProductByCode(ctx, row.Code)
		if errors.Is(err, domain.ErrUnknownProduct) {
			_, err = ledger.CreateProduct(ctx, inventory.CreateProductInput{
				Code:         row.Code,
				Name:         row.Name,
				StockMin:     row.StockMin,
				StockMax:     row.StockMax,
				InitialStock: row.Stock,
				Actor:        actor,
			})
			if err != nil {
				errs = append(errs, fmt.Errorf("línea %d (%s): %w", row.Line, row.Code, err))
				continue
			}
			sum.Created++
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("línea %d (%s): %w", row.Line, row.Code, err))
			continue
		}

		changed := false
		if p.StockMin != row.StockMin || p.StockMax != row.StockMax {
			if _, err := ledger.UpdateThresholds(ctx, p.ID, row.StockMin, row.StockMax, actor); err != nil {
				errs = append(errs, fmt.Errorf("línea %d (%s): %w", row.Line, row.Code, err))
				continue
			}
			changed = true
		}
		if p.StockActual != row.Stock {
			_, err := ledger.RecordMovement(ctx, inventory.RecordMovementInput{
				ProductID: p.ID,
				Kind:      entity.MovementAdjustment,
				Quantity:  row.Stock,
				Reason:    entity.ReasonPhysicalCountImport,
				Actor:     actor,
			})
			if err != nil {
				errs = append(errs, fmt.Errorf("línea %d (%s): %w", row.Line, row.Code, err))
				continue
			}
			changed = true
		}
		if changed {
			sum.Adjusted++
		} else {
			sum.Unchanged++
		}
	}
	return sum, errors.Join(errs...)
}
