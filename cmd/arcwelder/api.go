package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdlog "log"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/fieldOfView/ArcWelderLib/config"
	"github.com/fieldOfView/ArcWelderLib/fileio"
	"github.com/fieldOfView/ArcWelderLib/firmware"
	"github.com/fieldOfView/ArcWelderLib/gcode"
	"github.com/fieldOfView/ArcWelderLib/log"
	"github.com/fieldOfView/ArcWelderLib/precision"
	"github.com/fieldOfView/ArcWelderLib/render"
	"github.com/fieldOfView/ArcWelderLib/stats"
	"github.com/fieldOfView/ArcWelderLib/weld"
)

const (
	progressChannel = "/events/progress"

	weldSuffix       = ".aw"
	straightenSuffix = ".straight"
)

type api struct {
	http.Handler
	dataDir string
	sse     *sse.Server
	log     *log.Logger
}

func newAPI(dir string, lg *log.Logger) *api {
	r := mux.NewRouter()

	a := &api{
		Handler: r,
		dataDir: dir,
		log:     lg,
		sse: sse.NewServer(&sse.Options{
			Logger: stdlog.New(io.Discard, "", 0),
		}),
	}

	r.HandleFunc("/data/{name:.+}", a.getFile).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/data/{name:.+}", a.putFile).Methods(http.MethodPut)
	r.HandleFunc("/data/{name:.+}", a.deleteFile).Methods(http.MethodDelete)

	r.HandleFunc("/api/weld/{name:.+}", a.weld).Methods(http.MethodPost)
	r.HandleFunc("/api/straighten/{name:.+}", a.straighten).Methods(http.MethodPost)
	r.HandleFunc("/api/preview/weld/{name:.+}", a.previewWeld).Methods(http.MethodGet)
	r.HandleFunc("/api/preview/straighten/{name:.+}", a.previewStraighten).Methods(http.MethodGet)
	r.HandleFunc("/api/firmware/{type}", a.firmwareVersions).Methods(http.MethodGet)
	r.HandleFunc("/api/firmware/{type}/{version}", a.firmwareDefaults).Methods(http.MethodGet)

	r.PathPrefix("/events/").Handler(a.sse)

	return a
}

func (a *api) Close() {
	a.sse.Shutdown()
}

func safePath(base, name string) (bool, string) {
	if filepath.Separator != '/' && strings.ContainsRune(name, filepath.Separator) {
		return false, ""
	}
	dir := base
	if dir == "" {
		dir = "."
	}
	fullName := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+name)))
	return true, fullName
}

func (a *api) dataPath(w http.ResponseWriter, req *http.Request) (string, bool) {
	ok, name := safePath(a.dataDir, mux.Vars(req)["name"])
	if !ok {
		a.log.Warn("invalid path", zap.String("name", mux.Vars(req)["name"]))
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
	}
	return name, ok
}

func (a *api) getFile(w http.ResponseWriter, req *http.Request) {
	name, ok := a.dataPath(w, req)
	if !ok {
		return
	}
	http.ServeFile(w, req, name)
}

func (a *api) putFile(w http.ResponseWriter, req *http.Request) {
	name, ok := a.dataPath(w, req)
	if !ok {
		return
	}
	tgt, err := fileio.Create(name, name)
	if err != nil {
		a.log.Error("create file", zap.String("name", name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if _, err := io.Copy(tgt, req.Body); err != nil {
		tgt.Abort()
		a.log.Error("write file", zap.String("name", name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := tgt.Commit(); err != nil {
		a.log.Error("write file", zap.String("name", name), zap.Error(err))
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (a *api) deleteFile(w http.ResponseWriter, req *http.Request) {
	name, ok := a.dataPath(w, req)
	if !ok {
		return
	}
	if err := os.Remove(name); err != nil {
		a.log.Error("delete file", zap.String("name", name), zap.Error(err))
		status := http.StatusInternalServerError
		if errors.Is(err, os.ErrNotExist) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// writeResult encodes v as msgpack when the client accepts it and as json
// otherwise.
func writeResult(w http.ResponseWriter, req *http.Request, status int, v any) error {
	accept := req.Header.Get("Accept")
	if strings.Contains(accept, "application/msgpack") || strings.Contains(accept, "application/x-msgpack") {
		w.Header().Set("Content-Type", "application/msgpack")
		w.WriteHeader(status)
		return render.Render(w, render.FormatMsgpack, v)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

func (a *api) writeError(w http.ResponseWriter, err error) {
	var cerr *config.Error
	if errors.As(err, &cerr) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

// publish sends each progress snapshot to the event stream.
func (a *api) publish(job, name string) stats.Callback {
	return func(p stats.Progress) bool {
		data, err := json.Marshal(struct {
			Job  string `json:"job"`
			Name string `json:"name"`
			stats.Progress
		}{job, name, p})
		if err != nil {
			a.log.Error("marshal progress", zap.Error(err))
			return true
		}
		a.sse.SendMessage(progressChannel, sse.SimpleMessage(string(data)))
		return true
	}
}

// process runs a job over the data file {name} into the target named by
// the target query parameter, or name with suffix.
func (a *api) process(w http.ResponseWriter, req *http.Request, job, suffix string, run runFunc) {
	name := mux.Vars(req)["name"]
	target := req.URL.Query().Get("target")
	if target == "" {
		target = fileio.DefaultTarget(name, suffix)
	}
	okSrc, srcPath := safePath(a.dataDir, name)
	okDst, dstPath := safePath(a.dataDir, target)
	if !okSrc || !okDst {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}

	src, err := fileio.Open(srcPath)
	if errors.Is(err, config.ErrMissingSource) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		a.writeError(w, err)
		return
	}
	defer src.Close()

	tgt, err := fileio.Create(srcPath, dstPath)
	if err != nil {
		a.writeError(w, err)
		return
	}

	lg := a.log.Zap().With(zap.String("command", job), zap.String("source", name), zap.String("target", target))
	start := time.Now()
	out, err := run(req.Context(), src, tgt, src.Size, a.publish(job, name), 250*time.Millisecond)
	src.Close()
	if err != nil {
		tgt.Abort()
		lg.Error("run failed", zap.Error(err))
		a.writeError(w, err)
		return
	}
	status := http.StatusOK
	if out.cancelled {
		tgt.Abort()
		status = http.StatusServiceUnavailable
	} else if err := tgt.Commit(); err != nil {
		lg.Error("commit target failed", zap.Error(err))
		a.writeError(w, err)
		return
	}
	lg.Info("run finished", zap.Bool("cancelled", out.cancelled), zap.Duration("elapsed", time.Since(start)))
	w.Header().Set("Location", "/data/"+target)
	if err := writeResult(w, req, status, out.result); err != nil {
		lg.Error("encode result", zap.Error(err))
	}
}

// preview streams the data file {name} through the reader returned by wrap
// without writing a target.
func (a *api) preview(w http.ResponseWriter, req *http.Request, wrap func(gcode.Reader) (gcode.Reader, error)) {
	name, ok := a.dataPath(w, req)
	if !ok {
		return
	}
	src, err := fileio.Open(name)
	if errors.Is(err, config.ErrMissingSource) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		a.writeError(w, err)
		return
	}
	defer src.Close()

	r, err := wrap(gcode.NewParser(src))
	if err != nil {
		a.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if _, err := io.Copy(w, gcode.NewBuffer(r)); err != nil {
		a.log.Error("stream preview", zap.String("name", name), zap.Error(err))
	}
}

// queryParser reads typed query parameters, keeping the first error.
type queryParser struct {
	q   url.Values
	err error
}

func (p *queryParser) parseFloat(param string, dst *float64) {
	if p.err != nil || !p.q.Has(param) {
		return
	}
	v, err := strconv.ParseFloat(p.q.Get(param), 64)
	if err != nil {
		p.err = config.NewError(config.ErrInvalid, param, p.q.Get(param), "expected a number")
		return
	}
	*dst = v
}

func (p *queryParser) parseInt(param string, dst *int) {
	if p.err != nil || !p.q.Has(param) {
		return
	}
	v, err := strconv.Atoi(p.q.Get(param))
	if err != nil {
		p.err = config.NewError(config.ErrInvalid, param, p.q.Get(param), "expected an integer")
		return
	}
	*dst = v
}

func (p *queryParser) parseBool(param string, dst *bool) {
	if p.err != nil || !p.q.Has(param) {
		return
	}
	v, err := strconv.ParseBool(p.q.Get(param))
	if err != nil {
		p.err = config.NewError(config.ErrInvalid, param, p.q.Get(param), "expected true or false")
		return
	}
	*dst = v
}

func weldQuery(q url.Values) (weld.Options, error) {
	opts := weld.DefaultOptions()
	p := &queryParser{q: q}
	t := &opts.Tolerance
	p.parseFloat("resolution_mm", &t.ResolutionMM)
	p.parseFloat("path_tolerance_percent", &t.PathTolerancePercent)
	p.parseFloat("max_radius_mm", &t.MaxRadiusMM)
	p.parseBool("allow_3d_arcs", &t.Allow3DArcs)
	p.parseBool("allow_travel_arcs", &t.AllowTravelArcs)
	p.parseFloat("extrusion_rate_variance_percent", &t.ExtrusionRateVariancePercent)
	p.parseInt("max_gcode_length", &t.MaxGcodeLength)
	p.parseInt("min_arc_segments", &t.MinArcSegments)
	p.parseFloat("mm_per_arc_segment", &t.MMPerArcSegment)
	p.parseBool("allow_dynamic_precision", &opts.Precision.Dynamic)
	p.parseInt("default_xyz_precision", &opts.Precision.XYZ)
	p.parseInt("default_e_precision", &opts.Precision.E)
	p.parseBool("g90_influences_extruder", &opts.G90InfluencesExtruder)
	if p.err != nil {
		return opts, p.err
	}

	tol, _, err := opts.Tolerance.Validate()
	if err != nil {
		return opts, err
	}
	opts.Tolerance = tol
	opts.Precision, _ = opts.Precision.Clamp()
	return opts, nil
}

func straightenQuery(q url.Values) (firmware.Options, error) {
	t := firmware.DefaultType
	if s := q.Get("firmware_type"); s != "" {
		var err error
		if t, err = firmware.ParseType(s); err != nil {
			return firmware.Options{}, err
		}
	}
	overrides := make(map[string]string)
	for _, name := range firmware.AllArguments {
		if q.Has(name) {
			overrides[name] = q.Get(name)
		}
	}
	args, err := firmware.Configure(t, q.Get("firmware_version"), overrides)
	if err != nil {
		return firmware.Options{}, err
	}

	prec := precision.DefaultConfig()
	p := &queryParser{q: q}
	p.parseBool("allow_dynamic_precision", &prec.Dynamic)
	p.parseInt("default_xyz_precision", &prec.XYZ)
	p.parseInt("default_e_precision", &prec.E)
	if p.err != nil {
		return firmware.Options{}, p.err
	}
	prec, _ = prec.Clamp()
	return firmware.Options{Arguments: args, Precision: prec}, nil
}

func (a *api) weld(w http.ResponseWriter, req *http.Request) {
	opts, err := weldQuery(req.URL.Query())
	if err != nil {
		a.writeError(w, err)
		return
	}
	opts.Logger = a.log.Zap()
	a.process(w, req, "weld", weldSuffix, func(ctx context.Context, src io.Reader, dst io.Writer, total int64, cb stats.Callback, interval time.Duration) (outcome, error) {
		res, err := weld.Run(ctx, src, dst, weld.RunOptions{Options: opts, TotalBytes: total, Callback: cb, Interval: interval})
		return outcome{result: res, cancelled: res.Cancelled}, err
	})
}

func (a *api) straighten(w http.ResponseWriter, req *http.Request) {
	opts, err := straightenQuery(req.URL.Query())
	if err != nil {
		a.writeError(w, err)
		return
	}
	opts.Logger = a.log.Zap()
	a.process(w, req, "straighten", straightenSuffix, func(ctx context.Context, src io.Reader, dst io.Writer, total int64, cb stats.Callback, interval time.Duration) (outcome, error) {
		res, err := firmware.Run(ctx, src, dst, firmware.RunOptions{Options: opts, TotalBytes: total, Callback: cb, Interval: interval})
		return outcome{result: res, cancelled: res.Cancelled}, err
	})
}

func (a *api) previewWeld(w http.ResponseWriter, req *http.Request) {
	opts, err := weldQuery(req.URL.Query())
	if err != nil {
		a.writeError(w, err)
		return
	}
	opts.Logger = a.log.Zap()
	a.preview(w, req, func(r gcode.Reader) (gcode.Reader, error) {
		wl, err := weld.NewWelder(r, opts)
		if err != nil {
			return nil, err
		}
		return wl, nil
	})
}

func (a *api) previewStraighten(w http.ResponseWriter, req *http.Request) {
	opts, err := straightenQuery(req.URL.Query())
	if err != nil {
		a.writeError(w, err)
		return
	}
	opts.Logger = a.log.Zap()
	a.preview(w, req, func(r gcode.Reader) (gcode.Reader, error) {
		s, err := firmware.NewStraightener(r, opts)
		if err != nil {
			return nil, err
		}
		return s, nil
	})
}

func (a *api) firmwareVersions(w http.ResponseWriter, req *http.Request) {
	t, err := firmware.ParseType(mux.Vars(req)["type"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err := writeResult(w, req, http.StatusOK, versionList(t)); err != nil {
		a.log.Error("encode versions", zap.Error(err))
	}
}

func (a *api) firmwareDefaults(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)
	t, err := firmware.ParseType(vars["type"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	args, err := firmware.DefaultArguments(t, vars["version"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err := writeResult(w, req, http.StatusOK, args); err != nil {
		a.log.Error("encode defaults", zap.Error(err))
	}
}
