package editor

// DefaultPixelsPerSecond is the timeline scale at zoom 1.
const DefaultPixelsPerSecond = 50.0

var zoomLevels = []float64{0.25, 0.5, 1, 2, 5, 10, 20}

// defaultZoom indexes zoom level 1.
const defaultZoom = 2

// ZoomIn steps to the next larger zoom level and returns it.
func (s *Session) ZoomIn() float64 {
	return s.setZoom(1)
}

// ZoomOut steps to the next smaller zoom level and returns it.
func (s *Session) ZoomOut() float64 {
	return s.setZoom(-1)
}

// ResetZoom returns to zoom level 1.
func (s *Session) ResetZoom() float64 {
	s.mu.Lock()
	s.zoom = defaultZoom
	s.mu.Unlock()
	s.notify()
	return zoomLevels[defaultZoom]
}

// Zoom returns the current zoom factor.
func (s *Session) Zoom() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return zoomLevels[s.zoom]
}

// PixelsPerSecond returns the timeline scale at the current zoom.
func (s *Session) PixelsPerSecond() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opts.PixelsPerSecond * zoomLevels[s.zoom]
}

func (s *Session) setZoom(step int) float64 {
	s.mu.Lock()
	z := s.zoom + step
	if z < 0 {
		z = 0
	}
	if z >= len(zoomLevels) {
		z = len(zoomLevels) - 1
	}
	changed := z != s.zoom
	s.zoom = z
	s.mu.Unlock()

	if changed {
		s.notify()
	}
	return zoomLevels[z]
}
