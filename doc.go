/*
go-platedetect locates vehicle license plates in a photograph by fusing the
output of four independent feature based detectors (geometric, color,
texture, and gradient analysis) into a small set of high confidence bounding
boxes.

The library is split into stages.  Pixel level primitives (edge maps,
contours, color space conversion, oriented texture responses, morphology)
are consumed through the primitive.Engine interface with an OpenCV backed
implementation in primitive/opencv and a pure Go implementation in
primitive/pure.  The four candidate generators live in the generator
package, and the detector package runs the full pipeline of generation,
validation, overlap grouping, fusion, and ranking.

See example code and usage in the example subdirectory.
*/
package platedetect
