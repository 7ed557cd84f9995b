package exifh

// Tag names cleared per IFD when stripping, keyed by the fully
// qualified IFD path. Names follow the standard EXIF tag catalog; a
// name missing from the catalog in use is skipped.
var clearTags = map[string][]string{
	"IFD": {
		"NewSubfileType",
		"SubfileType",
		"ImageWidth",
		"ImageLength",
		"BitsPerSample",
		"Compression",
		"PhotometricInterpretation",
		"ImageDescription",
		"Make",
		"Model",
		"StripOffsets",
		"Orientation",
		"SamplesPerPixel",
		"RowsPerStrip",
		"StripByteCounts",
		"XResolution",
		"YResolution",
		"PlanarConfiguration",
		"ResolutionUnit",
		"TransferFunction",
		"Software",
		"DateTime",
		"Artist",
		"WhitePoint",
		"PrimaryChromaticities",
		"YCbCrCoefficients",
		"YCbCrSubSampling",
		"YCbCrPositioning",
		"ReferenceBlackWhite",
		"Copyright",
		"DNGVersion",
		"DefaultCropSize",
	},
	"IFD/Exif": {
		"ExposureTime",
		"FNumber",
		"ExposureProgram",
		"SpectralSensitivity",
		"ISOSpeedRatings",
		"OECF",
		"ExifVersion",
		"DateTimeOriginal",
		"DateTimeDigitized",
		"ComponentsConfiguration",
		"CompressedBitsPerPixel",
		"ShutterSpeedValue",
		"ApertureValue",
		"BrightnessValue",
		"ExposureBiasValue",
		"MaxApertureValue",
		"SubjectDistance",
		"MeteringMode",
		"LightSource",
		"Flash",
		"FocalLength",
		"SubjectArea",
		"MakerNote",
		"UserComment",
		"SubSecTime",
		"SubSecTimeOriginal",
		"SubSecTimeDigitized",
		"FlashpixVersion",
		"ColorSpace",
		"PixelXDimension",
		"PixelYDimension",
		"RelatedSoundFile",
		"FlashEnergy",
		"SpatialFrequencyResponse",
		"FocalPlaneXResolution",
		"FocalPlaneYResolution",
		"FocalPlaneResolutionUnit",
		"SubjectLocation",
		"ExposureIndex",
		"SensingMethod",
		"FileSource",
		"SceneType",
		"CFAPattern",
		"CustomRendered",
		"ExposureMode",
		"WhiteBalance",
		"DigitalZoomRatio",
		"FocalLengthIn35mmFilm",
		"SceneCaptureType",
		"GainControl",
		"Contrast",
		"Saturation",
		"Sharpness",
		"DeviceSettingDescription",
		"SubjectDistanceRange",
		"ImageUniqueID",
		"CameraOwnerName",
		"BodySerialNumber",
		"LensMake",
		"LensModel",
		"LensSerialNumber",
	},
	"IFD/GPSInfo": {
		"GPSVersionID",
		"GPSLatitudeRef",
		"GPSLatitude",
		"GPSLongitudeRef",
		"GPSLongitude",
		"GPSAltitudeRef",
		"GPSAltitude",
		"GPSTimeStamp",
		"GPSSatellites",
		"GPSStatus",
		"GPSMeasureMode",
		"GPSDOP",
		"GPSSpeedRef",
		"GPSSpeed",
		"GPSTrackRef",
		"GPSTrack",
		"GPSImgDirectionRef",
		"GPSImgDirection",
		"GPSMapDatum",
		"GPSDestLatitudeRef",
		"GPSDestLatitude",
		"GPSDestLongitudeRef",
		"GPSDestLongitude",
		"GPSDestBearingRef",
		"GPSDestBearing",
		"GPSDestDistanceRef",
		"GPSDestDistance",
		"GPSProcessingMethod",
		"GPSAreaInformation",
		"GPSDateStamp",
		"GPSDifferential",
	},
	"IFD/Exif/Iop": {
		"InteroperabilityIndex",
	},
	"IFD1": {
		"ImageWidth",
		"ImageLength",
		"Compression",
		"Orientation",
		"XResolution",
		"YResolution",
		"ResolutionUnit",
		"JPEGInterchangeFormat",
		"JPEGInterchangeFormatLength",
		"DateTime",
		"Make",
		"Model",
		"Software",
	},
}
