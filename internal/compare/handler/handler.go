package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"partcompare-service/internal/compare/model"
	cmpSvc "partcompare-service/internal/compare/service"
	"partcompare-service/internal/config"
	"partcompare-service/internal/fileio"
	"partcompare-service/internal/middleware"
	"partcompare-service/internal/utils"
)

const downloadName = "part_number_differences"

// Compare возвращает http.HandlerFunc для
// r.Post("/compare", cmpHnd.Compare(cfg, logger)).
//
// Форма: файлы original/new (или fileA/fileB), threshold, a_id, a_desc,
// b_id, b_desc, a_header_row, b_header_row, workers, prefilter, format.
func Compare(cfg config.Config, logger zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log := logger.With().Str("rid", middleware.GetRequestID(r)).Logger()

		defer r.Body.Close()
		if err := r.ParseMultipartForm(int64(cfg.MaxUploadMB) << 20); err != nil {
			// тело без Content-Length упирается в MaxBytesReader посреди чтения
			if mbe := new(http.MaxBytesError); errors.As(err, &mbe) {
				writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", mbe.Limit))
				return
			}
			writeError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
			return
		}
		defer r.MultipartForm.RemoveAll()

		opt := model.Options{
			Threshold: cfg.DefaultThreshold,
			Workers:   atoi(r.FormValue("workers"), cfg.MatchWorkers),
			Prefilter: toBool(r.FormValue("prefilter"), true),
		}
		if s := r.FormValue("threshold"); s != "" {
			v, ok := utils.ParseDecimal(s)
			if !ok {
				writeError(w, http.StatusBadRequest, fmt.Sprintf("bad threshold %q", s))
				return
			}
			opt.Threshold = v
		}
		if opt.Threshold < 0 || opt.Threshold > 1 {
			writeError(w, http.StatusBadRequest, cmpSvc.ErrInvalidThreshold.Error())
			return
		}
		if opt.Workers < 1 || opt.Workers > cfg.MatchWorkers {
			opt.Workers = cfg.MatchWorkers
		}

		format := strings.ToLower(orDefault(r.FormValue("format"), "json"))
		if format != "json" && format != "csv" && format != "xlsx" {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
			return
		}

		ma := model.Mapping{
			IDKey:     orDefault(r.FormValue("a_id"), model.DefaultIDKeys),
			DescKey:   orDefault(r.FormValue("a_desc"), model.DefaultDescKeys),
			HeaderRow: atoi(r.FormValue("a_header_row"), 1),
		}
		mb := model.Mapping{
			IDKey:     orDefault(r.FormValue("b_id"), model.DefaultIDKeys),
			DescKey:   orDefault(r.FormValue("b_desc"), model.DefaultDescKeys),
			HeaderRow: atoi(r.FormValue("b_header_row"), 1),
		}

		a, err := readUpload(r, ma, "original", "fileA")
		if err != nil {
			writeError(w, http.StatusBadRequest, "original list: "+err.Error())
			return
		}
		b, err := readUpload(r, mb, "new", "fileB")
		if err != nil {
			writeError(w, http.StatusBadRequest, "new list: "+err.Error())
			return
		}

		rep, err := cmpSvc.Run(r.Context(), a, b, opt)
		if err != nil {
			if errors.Is(err, cmpSvc.ErrInvalidThreshold) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			log.Error().Err(err).Msg("compare")
			writeError(w, http.StatusInternalServerError, "compare failed")
			return
		}
		rep.MapA = ma
		rep.MapB = mb

		log.Info().
			Int("rowsA", rep.Stats.OriginalRows).
			Int("rowsB", rep.Stats.ComparisonRows).
			Int("droppedA", rep.Stats.OriginalDropped).
			Int("droppedB", rep.Stats.ComparisonDropped).
			Int("results", len(rep.Results)).
			Int("pruned", rep.Stats.Pruned).
			Float64("threshold", opt.Threshold).
			Dur("elapsed", time.Since(start)).
			Msg("compare done")

		if err := respond(w, format, rep); err != nil {
			log.Error().Err(err).Str("format", format).Msg("write response")
		}
	}
}

// readUpload берёт первый из присланных файлов (по именам полей) и
// переводит его в записи по маппингу.
func readUpload(r *http.Request, m model.Mapping, fields ...string) (model.PartDataset, error) {
	var (
		file multipart.File
		hdr  *multipart.FileHeader
		err  error
	)
	for _, f := range fields {
		file, hdr, err = r.FormFile(f)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, fmt.Errorf("missing file %q: %w", fields[0], err)
	}
	defer file.Close()

	t, err := fileio.ReadAny(file, hdr.Filename, m.HeaderRow)
	if err != nil {
		return nil, err
	}
	return fileio.Records(t, m)
}

func respond(w http.ResponseWriter, format string, rep model.Report) error {
	w.Header().Set("Cache-Control", "no-store")
	switch format {
	case "csv":
		var buf bytes.Buffer
		if err := fileio.WriteCSV(&buf, rep.Results); err != nil {
			writeError(w, http.StatusInternalServerError, "export failed")
			return err
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", `attachment; filename="`+downloadName+`.csv"`)
		_, err := w.Write(buf.Bytes())
		return err
	case "xlsx":
		var buf bytes.Buffer
		if err := fileio.WriteXLSX(&buf, rep.Results); err != nil {
			writeError(w, http.StatusInternalServerError, "export failed")
			return err
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename="`+downloadName+`.xlsx"`)
		_, err := w.Write(buf.Bytes())
		return err
	default:
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
